package core

import "testing"

func TestParsePreset(t *testing.T) {
	testCases := []struct {
		in      string
		want    Preset
		wantErr bool
	}{
		{in: "sns", want: PresetSNSPublish},
		{in: "snsPublish", want: PresetSNSPublish},
		{in: "delivery", want: PresetDelivery},
		{in: "FULL", want: PresetFullClean},
		{in: "fullClean", want: PresetFullClean},
		{in: " custom ", want: PresetCustom},
		{in: "", want: PresetCustom},
		{in: "everything", wantErr: true},
	}
	for _, tC := range testCases {
		t.Run(tC.in, func(t *testing.T) {
			got, err := ParsePreset(tC.in)
			if (err != nil) != tC.wantErr || got != tC.want {
				t.Errorf("ParsePreset(%q) = %q, %v", tC.in, got, err)
			}
		})
	}
}

func TestCategoriesSetHas(t *testing.T) {
	for _, c := range RequestCategories {
		var cs Categories
		cs.Set(c)
		for _, o := range RequestCategories {
			if cs.Has(o) != (o == c) {
				t.Errorf("after Set(%s), Has(%s) = %v", c, o, cs.Has(o))
			}
		}
		if c.Label() == string(c) {
			t.Errorf("%s has no label", c)
		}
	}
	var cs Categories
	cs.Set(CatMakerNote)
	if cs != (Categories{}) || cs.Has(CatMakerNote) {
		t.Error("maker note is not a request category")
	}
}

func TestIsJPEG(t *testing.T) {
	if !IsJPEG([]byte{0xFF, 0xD8, 0xFF}) || IsJPEG([]byte{0xFF}) || IsJPEG([]byte("PNG")) {
		t.Error("IsJPEG")
	}
	for path, want := range map[string]bool{
		"a.jpg": true, "B.JPEG": true, "c.jpe": true, "d.jfif": true,
		"e.png": false, "jpg": false, "f.jpg.bak": false,
	} {
		if HasJPEGExt(path) != want {
			t.Errorf("HasJPEGExt(%q) = %v", path, !want)
		}
	}
}
