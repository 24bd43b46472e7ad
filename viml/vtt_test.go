package viml

import "testing"

func TestGenerateVTT(t *testing.T) {
	entries := []Entry{
		{Timestamp: 5, Method: "ocr", Confidence: 95, PersonID: 1, Name: "Jane Doe"},
		{Timestamp: 12.5, Method: "face", Confidence: 90, PersonID: 1, Name: "Jane Doe"},
	}

	want := "WEBVTT\n\n" +
		"1\n" +
		"00:00:05.000 --> 00:00:12.500\n" +
		"[OCR] Jane Doe detected. <id person_id=\"1\" name=\"Jane Doe\" conf=\"95\" method=\"ocr\">\n\n" +
		"2\n" +
		"00:00:12.500 --> 00:00:14.500\n" +
		"[FACE] Jane Doe detected. <id person_id=\"1\" name=\"Jane Doe\" conf=\"90\" method=\"face\">\n\n"

	if got := GenerateVTT(entries); got != want {
		t.Errorf("unexpected VTT output:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestGenerateVTTEmpty(t *testing.T) {
	if got := GenerateVTT(nil); got != "WEBVTT\n\n" {
		t.Errorf("empty track: got %q", got)
	}
}

func TestFormatVTTTime(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00.000"},
		{5.25, "00:00:05.250"},
		{65, "00:01:05.000"},
		{3725.5, "01:02:05.500"},
	}
	for _, c := range cases {
		if got := formatVTTTime(c.seconds); got != c.want {
			t.Errorf("formatVTTTime(%v): got %q, want %q", c.seconds, got, c.want)
		}
	}
}
