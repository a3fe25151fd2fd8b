package timeshift

import (
	"math"
	"testing"
)

func TestApplyOffset(t *testing.T) {
	testCases := []struct {
		desc   string
		in     string
		offset int64
		want   string
		ok     bool
	}{
		{desc: "one hour back", in: "2023:06:15 10:30:00", offset: -3600, want: "2023:06:15 09:30:00", ok: true},
		{desc: "zero", in: "2023:06:15 10:30:00", offset: 0, want: "2023:06:15 10:30:00", ok: true},
		{desc: "new year", in: "2023:12:31 23:30:00", offset: 3600, want: "2024:01:01 00:30:00", ok: true},
		{desc: "leap day", in: "2024:02:28 12:00:00", offset: 86400, want: "2024:02:29 12:00:00", ok: true},
		{desc: "back across midnight", in: "2023:03:01 00:10:00", offset: -601, want: "2023:02:28 23:59:59", ok: true},
		{desc: "first second", in: "0000:01:01 00:00:01", offset: -1, want: "0000:01:01 00:00:00", ok: true},
		{desc: "last second", in: "9999:12:31 23:59:58", offset: 1, want: "9999:12:31 23:59:59", ok: true},
		{desc: "below year zero", in: "0000:01:01 00:00:00", offset: -1},
		{desc: "past year 9999", in: "9999:12:31 23:59:59", offset: 1},
		{desc: "huge offset", in: "2023:06:15 10:30:00", offset: math.MaxInt64},
		{desc: "huge negative offset", in: "2023:06:15 10:30:00", offset: math.MinInt64},
		{desc: "single digit month", in: "2023:6:15 10:30:00"},
		{desc: "single digit hour", in: "2023:06:15 9:30:00 "},
		{desc: "dashes", in: "2023-06-15 10:30:00"},
		{desc: "iso8601", in: "2023-06-15T10:30:00"},
		{desc: "impossible date", in: "2023:02:30 10:00:00"},
		{desc: "blank", in: "    :  :     :  :  "},
		{desc: "empty"},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			got, ok := ApplyOffset(tC.in, tC.offset)
			if ok != tC.ok || got != tC.want {
				t.Errorf("ApplyOffset(%q, %d) = %q, %v; want %q, %v", tC.in, tC.offset, got, ok, tC.want, tC.ok)
			}
		})
	}
}

func TestApplyOffsetReversible(t *testing.T) {
	for _, in := range []string{"2023:06:15 10:30:00", "1999:12:31 23:59:59", "2024:02:29 00:00:00"} {
		for _, offset := range []int64{1, -1, 3600, -86400 * 400, 123456789} {
			shifted, ok := ApplyOffset(in, offset)
			if !ok {
				t.Fatalf("ApplyOffset(%q, %d) failed", in, offset)
			}
			back, ok := ApplyOffset(shifted, -offset)
			if !ok || back != in {
				t.Errorf("%q shifted by %d and back gave %q", in, offset, back)
			}
		}
	}
}

func TestPatchAt(t *testing.T) {
	field := func(s string) []byte {
		buf := append([]byte("ab"), s...)
		buf = append(buf, 0)
		return append(buf, "cd"...)
	}
	testCases := []struct {
		desc string
		buf  []byte
		off  int
		want string
		ok   bool
	}{
		{desc: "shifted", buf: field("2023:06:15 10:30:00"), off: 2, want: "ab2023:06:15 09:30:00\x00cd", ok: true},
		{desc: "blank", buf: field("                   "), off: 2, want: "ab                   \x00cd"},
		{desc: "placeholder", buf: field("    :  :     :  :  "), off: 2, want: "ab    :  :     :  :  \x00cd"},
		{desc: "garbage", buf: field("not a datetime here"), off: 2, want: "abnot a datetime here\x00cd"},
		{desc: "invalid utf8", buf: field("2023:06:15 10:30:\xff\xfe"), off: 2, want: "ab2023:06:15 10:30:\xff\xfe\x00cd"},
		{desc: "out of bounds", buf: field("2023:06:15 10:30:00"), off: 5, want: "ab2023:06:15 10:30:00\x00cd"},
		{desc: "negative offset", buf: field("2023:06:15 10:30:00"), off: -1, want: "ab2023:06:15 10:30:00\x00cd"},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			n := len(tC.buf)
			ok := PatchAt(tC.buf, tC.off, -3600)
			if ok != tC.ok {
				t.Errorf("PatchAt = %v, want %v", ok, tC.ok)
			}
			if string(tC.buf) != tC.want {
				t.Errorf("buffer %q, want %q", tC.buf, tC.want)
			}
			if len(tC.buf) != n {
				t.Errorf("length changed from %d to %d", n, len(tC.buf))
			}
		})
	}
}

func TestPatchAtTrimsPadding(t *testing.T) {
	buf := []byte("2023:06:15 10:30:0\x00\x00")
	if PatchAt(buf, 0, 60) {
		t.Errorf("patched a truncated datetime: %q", buf)
	}
}
