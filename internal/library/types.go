package library

// SourceConfig declares one scanned video directory.
type SourceConfig struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

type Source struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Path       string `json:"path"`
	VideoCount int    `json:"video_count"`
}

// SubtitleStatus describes the subtitle files sitting next to one video.
type SubtitleStatus struct {
	HasTargetSubtitle bool     `json:"has_target_subtitle"`
	SubtitleFiles     []string `json:"subtitle_files"`
	Languages         []string `json:"languages"`
}

type Video struct {
	ID        string         `json:"id"`
	SourceID  string         `json:"source_id"`
	Name      string         `json:"name"`
	Path      string         `json:"path"`
	Subtitles SubtitleStatus `json:"subtitles"`
	// Processable marks videos still missing a subtitle in the target
	// language.
	Processable bool `json:"processable"`
}

type Library struct {
	Sources []Source `json:"sources"`
	Videos  []Video  `json:"videos"`
}
