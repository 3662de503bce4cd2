package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyZone        = "zone"
	KeyPermalink   = "permalink"
	KeyContentPath = "content_path"
	KeyURL         = "url"
	KeyFingerprint = "fingerprint"
	KeyBuildID     = "build_id"
	KeyDurationMS  = "duration_ms"
	KeyLanguage    = "language"
	KeyWarnings    = "warnings"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Zone(name string) slog.Attr        { return slog.String(KeyZone, name) }
func Permalink(p string) slog.Attr      { return slog.String(KeyPermalink, p) }
func ContentPath(p string) slog.Attr    { return slog.String(KeyContentPath, p) }
func URL(u string) slog.Attr            { return slog.String(KeyURL, u) }
func Fingerprint(fp string) slog.Attr   { return slog.String(KeyFingerprint, fp) }
func BuildID(id string) slog.Attr       { return slog.String(KeyBuildID, id) }
func DurationMS(ms float64) slog.Attr   { return slog.Float64(KeyDurationMS, ms) }
func Language(lang string) slog.Attr    { return slog.String(KeyLanguage, lang) }
func WarningCount(n int) slog.Attr      { return slog.Int(KeyWarnings, n) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
