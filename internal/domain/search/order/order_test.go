package order

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name      string
		directive string
		want      Spec
	}{
		{"blank", "", Default()},
		{"whitespace", "   ", Default()},
		{"field desc", "name desc", Spec{{"name", Desc}}},
		{"field only", "name", Spec{{"name", Asc}}},
		{"upper-case direction", "name DESC", Spec{{"name", Desc}}},
		{"pairs", "name desc created_at asc", Spec{{"name", Desc}, {"created_at", Asc}}},
		{"trailing field", "name desc id", Spec{{"name", Desc}, {"id", Asc}}},
		{"consecutive fields", "name id desc", Spec{{"name", Asc}, {"id", Desc}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(tt.directive)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Build(%q) = %v, want %v", tt.directive, got, tt.want)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	d := Default()
	if len(d) != 2 {
		t.Fatalf("len = %d", len(d))
	}
	if !d[0].IsRelevance() || d[0].Direction != Desc {
		t.Errorf("first = %+v", d[0])
	}
	if d[1].Field != "id" || d[1].Direction != Desc {
		t.Errorf("second = %+v", d[1])
	}
}

func TestSpec_JSON(t *testing.T) {
	b, err := json.Marshal(Default())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `[{"_score":"desc"},{"id":"desc"}]` {
		t.Errorf("got %s", b)
	}
}

func TestSpec_String(t *testing.T) {
	if s := Build("name desc id").String(); s != "name desc id asc" {
		t.Errorf("String() = %q", s)
	}
}
