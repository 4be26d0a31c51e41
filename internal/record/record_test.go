package record

import "testing"

func TestExtraValue(t *testing.T) {
	row := Row{Extra: map[string]string{"Country": "SE"}}

	if got := row.ExtraValue("Country"); got != "SE" {
		t.Errorf("ExtraValue(Country) = %q, want SE", got)
	}
	if got := row.ExtraValue("Missing"); got != "" {
		t.Errorf("ExtraValue(Missing) = %q, want empty", got)
	}

	var empty Row
	if got := empty.ExtraValue("Country"); got != "" {
		t.Errorf("ExtraValue on nil Extra = %q, want empty", got)
	}
}

func TestFields(t *testing.T) {
	row := Row{
		Line:             3,
		BrandCode:        "BR",
		Lang:             "en",
		RegistrationDate: "2023-04-01 09:30:00",
		FirstName:        "Ann",
		LastName:         "Lee",
		Phone:            "5551234",
		RegDate:          "2023-04-01",
		RegTime:          "09:30:00",
		Extra:            map[string]string{"Country": "SE"},
	}

	fields := row.Fields()

	want := map[string]interface{}{
		ColBrandCode:        "BR",
		ColLang:             "en",
		ColRegistrationDate: "2023-04-01 09:30:00",
		ColFirstName:        "Ann",
		ColLastName:         "Lee",
		ColPhone:            "5551234",
		"RegDate":           "2023-04-01",
		"RegTime":           "09:30:00",
		"Country":           "SE",
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("Fields()[%q] = %v, want %v", k, fields[k], v)
		}
	}

	// the map is a copy; mutating it must not affect the row
	fields[ColFirstName] = "Bob"
	if row.FirstName != "Ann" {
		t.Error("mutating Fields() leaked into the row")
	}
}

func TestDiscardLog(t *testing.T) {
	log := NewDiscardLog()

	if log.Len() != 0 {
		t.Fatalf("new log Len = %d, want 0", log.Len())
	}
	if _, ok := log.Lookup(1); ok {
		t.Fatal("Lookup on empty log returned ok")
	}

	log.Add(Discard{Line: 1, BrandCode: "BR1", Lang: "en"})
	log.Add(Discard{Line: 2, BrandCode: "BR2", Lang: "de"})

	if log.Len() != 2 {
		t.Errorf("Len = %d, want 2", log.Len())
	}

	d, ok := log.Lookup(2)
	if !ok {
		t.Fatal("Lookup(2) not found")
	}
	if d.BrandCode != "BR2" || d.Lang != "de" {
		t.Errorf("Lookup(2) = %+v, want BR2/de", d)
	}

	entries := log.Entries()
	if len(entries) != 2 || entries[0].Line != 1 || entries[1].Line != 2 {
		t.Errorf("Entries() = %+v, want insertion order by line", entries)
	}
}
