package utils

import "testing"

func TestMergeLabel(t *testing.T) {
	tests := []struct {
		name       string
		existing   Label
		incoming   Label
		wantValue  string
		wantSource string
	}{
		{"常规合并", Label{Value: "a", Source: "s1"}, Label{Value: "b", Source: "s2"}, "a|b", "s1,s2"},
		{"旧值为空", Label{}, Label{Value: "b", Source: "s2"}, "b", "s2"},
		{"新值为空", Label{Value: "a", Source: "s1"}, Label{}, "a", "s1"},
		{"来源一侧为空", Label{Value: "a"}, Label{Value: "b", Source: "s2"}, "a|b", "s2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeLabel(tt.existing, tt.incoming)
			if got.Value != tt.wantValue || got.Source != tt.wantSource {
				t.Errorf("MergeLabel() = %+v, want {%s %s}", got, tt.wantValue, tt.wantSource)
			}
		})
	}
}

func TestSplitValues(t *testing.T) {
	lbl := Label{Value: "a|b|c"}
	got := lbl.SplitValues()
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("SplitValues() = %v", got)
	}
	if (Label{}).SplitValues() != nil {
		t.Error("空 Label 应返回 nil")
	}
}
