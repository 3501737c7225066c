package feedback

import (
	"encoding/json"
	"testing"
)

func TestRecordJSONKeys(t *testing.T) {
	data, err := json.Marshal(Record{Name: "JOHN SMITH", Phone: "+7 (912) 345-67-89"})
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]string{}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"name", "email", "phone", "birthday", "message"} {
		if _, ok := got[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
	if got["phone"] != "+7 (912) 345-67-89" {
		t.Errorf("phone: got %q", got["phone"])
	}
}

func TestParseField(t *testing.T) {
	for _, f := range Fields() {
		got, ok := ParseField(string(f))
		if !ok || got != f {
			t.Errorf("ParseField(%q) = %q, %v", f, got, ok)
		}
	}
	if _, ok := ParseField("phone_number"); ok {
		t.Error("expected unknown field to be rejected")
	}
}

func TestRecordValue(t *testing.T) {
	r := Record{Name: "a", Email: "b", Phone: "c", Birthday: "d", Message: "e"}
	want := []string{"a", "b", "c", "d", "e"}
	for i, f := range Fields() {
		if v := r.Value(f); v != want[i] {
			t.Errorf("Value(%s) = %q, want %q", f, v, want[i])
		}
	}
}
