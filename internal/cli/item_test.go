package cli

import (
	"reflect"
	"testing"
)

func TestNormalizeTags(t *testing.T) {
	got := normalizeTags([]string{"Food", " Italian ", "cozy"})
	want := []string{"food", "italian", "cozy"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("normalizeTags = %v, want %v", got, want)
	}
}
