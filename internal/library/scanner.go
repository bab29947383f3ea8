// Package library scans configured video directories and reports which
// videos still need a subtitle in the target language. The cron sweep and the
// API both read from it.
package library

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"
)

type scannerOptions struct {
	cacheTTL time.Duration
}

type Option func(*scannerOptions)

func WithCacheTTL(ttl time.Duration) Option {
	return func(o *scannerOptions) {
		o.cacheTTL = ttl
	}
}

type scanCache struct {
	version uint64
	scanned time.Time
	library *Library
}

type Scanner struct {
	sources []SourceConfig

	mu             sync.RWMutex
	targetLanguage string
	cacheTTL       time.Duration
	cache          *scanCache
	configVersion  uint64
}

func NewScanner(sources []SourceConfig, targetLanguage string, opts ...Option) *Scanner {
	options := scannerOptions{
		cacheTTL: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Scanner{
		sources:        sources,
		targetLanguage: targetLanguage,
		cacheTTL:       options.cacheTTL,
	}
}

func (s *Scanner) TargetLanguage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.targetLanguage
}

// UpdateTargetLanguage changes the language the scan checks for and drops the
// cache, since processability depends on it.
func (s *Scanner) UpdateTargetLanguage(lang string) {
	s.mu.Lock()
	if s.targetLanguage != lang {
		s.targetLanguage = lang
		s.cache = nil
		s.configVersion++
	}
	s.mu.Unlock()
}

func (s *Scanner) Invalidate() {
	s.mu.Lock()
	s.cache = nil
	s.configVersion++
	s.mu.Unlock()
}

func (s *Scanner) Scan(ctx context.Context) (*Library, error) {
	s.mu.RLock()
	version := s.configVersion
	cacheTTL := s.cacheTTL
	if s.cache != nil && s.cache.version == version && cacheTTL > 0 && time.Since(s.cache.scanned) < cacheTTL {
		cached := cloneLibrary(s.cache.library)
		s.mu.RUnlock()
		return cached, nil
	}
	sources := append([]SourceConfig(nil), s.sources...)
	targetLanguage := s.targetLanguage
	s.mu.RUnlock()

	ret := &Library{
		Sources: make([]Source, 0, len(sources)),
		Videos:  make([]Video, 0),
	}

	for _, sourceCfg := range sources {
		if sourceCfg.Path == "" {
			continue
		}
		if _, err := os.Stat(sourceCfg.Path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}

		source := Source{
			ID:   sourceCfg.ID,
			Name: sourceCfg.Name,
			Path: sourceCfg.Path,
		}

		videoFiles, err := findVideoFiles(sourceCfg.Path)
		if err != nil {
			return nil, err
		}
		for _, videoPath := range videoFiles {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			baseName := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
			status, err := subtitleStatus(filepath.Dir(videoPath), baseName, targetLanguage)
			if err != nil {
				return nil, err
			}

			ret.Videos = append(ret.Videos, Video{
				ID:          videoPath,
				SourceID:    sourceCfg.ID,
				Name:        baseName,
				Path:        videoPath,
				Subtitles:   status,
				Processable: !status.HasTargetSubtitle,
			})
			source.VideoCount++
		}

		ret.Sources = append(ret.Sources, source)
	}

	s.mu.Lock()
	if s.configVersion == version && cacheTTL > 0 {
		s.cache = &scanCache{
			version: version,
			scanned: time.Now(),
			library: cloneLibrary(ret),
		}
	}
	s.mu.Unlock()

	return ret, nil
}

// Processable returns the videos still missing a target-language subtitle.
func (s *Scanner) Processable(ctx context.Context) ([]Video, error) {
	lib, err := s.Scan(ctx)
	if err != nil {
		return nil, err
	}
	ret := make([]Video, 0)
	for _, v := range lib.Videos {
		if v.Processable {
			ret = append(ret, v)
		}
	}
	return ret, nil
}

var subtitleExts = []string{".srt", ".vtt", ".ass", ".ssa", ".sub"}

var videoExts = []string{
	".mkv", ".mp4", ".m4v", ".mov", ".avi", ".wmv", ".flv", ".webm",
	".mpg", ".mpeg", ".ts", ".m2ts", ".vob",
}

func findVideoFiles(root string) ([]string, error) {
	ret := make([]string, 0)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if slices.Contains(videoExts, ext) {
			ret = append(ret, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// subtitleStatus inspects the sibling subtitle files of one video. Generated
// subtitles follow the "{base}.{lang}.srt" convention, so a language token
// between the base name and the extension marks the subtitle's language.
func subtitleStatus(dir, videoBase, targetLanguage string) (SubtitleStatus, error) {
	status := SubtitleStatus{
		SubtitleFiles: make([]string, 0),
		Languages:     make([]string, 0),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return SubtitleStatus{}, err
	}

	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !slices.Contains(subtitleExts, ext) {
			continue
		}
		stem := strings.TrimSuffix(name, ext)
		if !subtitleMatchesVideoBase(stem, videoBase) {
			continue
		}

		status.SubtitleFiles = append(status.SubtitleFiles, filepath.Join(dir, name))

		token := subtitleLangToken(stem, videoBase)
		lang := normalizeLangCode(token)
		if lang != "" && !seen[lang] {
			seen[lang] = true
			status.Languages = append(status.Languages, lang)
		}
		if lang != "" && lang == normalizeLangCode(targetLanguage) {
			status.HasTargetSubtitle = true
		}
	}

	return status, nil
}

func subtitleLangToken(stem, videoBase string) string {
	remain := strings.TrimPrefix(stem, videoBase)
	remain = strings.TrimLeft(remain, "._- ")
	if remain == "" {
		return ""
	}

	parts := strings.FieldsFunc(remain, func(r rune) bool {
		return r == '.' || r == '_' || r == ' '
	})
	for i := len(parts) - 1; i >= 0; i-- {
		token := strings.ToLower(parts[i])
		if normalizeLangCode(token) != "" {
			return token
		}
	}
	return ""
}

// normalizeLangCode validates a language token and returns its normalized
// ISO 639-1 base code (e.g. "fre"→"fr", "eng"→"en", "chi"→"zh").
// Returns "" if the token is not a recognized language code.
func normalizeLangCode(token string) string {
	if token == "" {
		return ""
	}
	tag, err := language.Parse(token)
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	return base.String()
}

func subtitleMatchesVideoBase(stem, videoBase string) bool {
	if stem == videoBase {
		return true
	}
	if !strings.HasPrefix(stem, videoBase) || len(stem) <= len(videoBase) {
		return false
	}
	switch stem[len(videoBase)] {
	case '.', '_', '-', ' ':
		return true
	default:
		return false
	}
}

func cloneLibrary(src *Library) *Library {
	if src == nil {
		return nil
	}

	dst := &Library{
		Sources: make([]Source, len(src.Sources)),
		Videos:  make([]Video, len(src.Videos)),
	}
	copy(dst.Sources, src.Sources)
	copy(dst.Videos, src.Videos)

	for i := range dst.Videos {
		dst.Videos[i].Subtitles.SubtitleFiles = append([]string(nil), src.Videos[i].Subtitles.SubtitleFiles...)
		dst.Videos[i].Subtitles.Languages = append([]string(nil), src.Videos[i].Subtitles.Languages...)
	}
	return dst
}
