package file

import "testing"

func TestReplaceExt(t *testing.T) {
	tests := []struct {
		path string
		ext  string
		want string
	}{
		{"video.mp4", ".wav", "video.wav"},
		{"video.mp4", "wav", "video.wav"},
		{"dir/video.tar.gz", ".srt", "dir/video.tar.srt"},
		{"noext", ".csv", "noext.csv"},
		{".env", ".bak", ".env.bak"},
		{"", ".wav", ""},
	}

	for _, tt := range tests {
		if got := ReplaceExt(tt.path, tt.ext); got != tt.want {
			t.Errorf("ReplaceExt(%q, %q)=%q, want %q", tt.path, tt.ext, got, tt.want)
		}
	}
}

func TestStem(t *testing.T) {
	if got := Stem("/data/uploads/clip.final.mp4"); got != "clip.final" {
		t.Errorf("Stem()=%q, want %q", got, "clip.final")
	}
	if got := Stem("talk.webm"); got != "talk" {
		t.Errorf("Stem()=%q, want %q", got, "talk")
	}
}
