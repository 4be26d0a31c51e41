package config

import "testing"

func TestConvertToPipeline(t *testing.T) {
	p, err := ConvertToPipeline(validConfigData())
	if err != nil {
		t.Fatalf("ConvertToPipeline: %v", err)
	}

	if p.ID != "registrations-2024" || p.Name != "Registration cleanup" {
		t.Errorf("pipeline = %+v", p)
	}
	if p.Input == nil || p.Input.Type != "csv" {
		t.Fatalf("input = %+v", p.Input)
	}
	if p.Input.Config["path"] != "in.csv" {
		t.Errorf("input path = %v", p.Input.Config["path"])
	}
	if len(p.Stages) != 2 || p.Stages[0].Type != "prune" || p.Stages[1].Type != "numericPhone" {
		t.Errorf("stages = %+v", p.Stages)
	}
	if p.Output == nil || p.Output.Type != "csv" {
		t.Fatalf("output = %+v", p.Output)
	}
}

func TestConvertToPipelineOmittedStages(t *testing.T) {
	data := validConfigData()
	delete(data, "stages")

	p, err := ConvertToPipeline(data)
	if err != nil {
		t.Fatalf("ConvertToPipeline: %v", err)
	}
	if len(p.Stages) != 0 {
		t.Errorf("stages = %+v, want empty for default chain selection", p.Stages)
	}
}

func TestConvertToPipelineErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]interface{})
	}{
		{"nil data", nil},
		{"missing id", func(d map[string]interface{}) { delete(d, "id") }},
		{"missing name", func(d map[string]interface{}) { delete(d, "name") }},
		{"missing input", func(d map[string]interface{}) { delete(d, "input") }},
		{"missing output", func(d map[string]interface{}) { delete(d, "output") }},
		{"module without type", func(d map[string]interface{}) {
			d["input"] = map[string]interface{}{"config": map[string]interface{}{}}
		}},
		{"stage not a map", func(d map[string]interface{}) {
			d["stages"] = []interface{}{"prune"}
		}},
		{"config not a map", func(d map[string]interface{}) {
			d["input"] = map[string]interface{}{"type": "csv", "config": "in.csv"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data map[string]interface{}
			if tt.mutate != nil {
				data = validConfigData()
				tt.mutate(data)
			}
			if _, err := ConvertToPipeline(data); err == nil {
				t.Error("expected error")
			}
		})
	}
}
