package sfm

import (
	"path/filepath"
	"strings"
)

// Category is a named bucket of recognized file extensions.
type Category struct {
	Name       string
	Extensions []string
}

// CategoryTable maps extensions to category names. Categories are kept in
// declaration order: when an extension appears in more than one category,
// the first one wins. A CategoryTable is immutable once built.
type CategoryTable struct {
	categories []Category
	byExt      map[string]string
}

// NewCategoryTable builds a table from the given categories. Extensions are
// normalized to lower case with a leading dot. Later duplicates of an
// extension never override an earlier category.
func NewCategoryTable(categories []Category) *CategoryTable {
	t := &CategoryTable{
		categories: make([]Category, 0, len(categories)),
		byExt:      make(map[string]string),
	}
	for _, c := range categories {
		exts := make([]string, 0, len(c.Extensions))
		for _, e := range c.Extensions {
			e = normalizeExtension(e)
			if e == "" {
				continue
			}
			exts = append(exts, e)
			if _, taken := t.byExt[e]; !taken {
				t.byExt[e] = c.Name
			}
		}
		t.categories = append(t.categories, Category{Name: c.Name, Extensions: exts})
	}
	return t
}

// DefaultCategoryTable returns the built-in category table.
func DefaultCategoryTable() *CategoryTable {
	return NewCategoryTable(DefaultCategories())
}

// DefaultCategories returns a fresh copy of the built-in categories.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Documents", Extensions: []string{".txt", ".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx", ".odt", ".ods", ".odp", ".csv", ".md", ".rtf"}},
		{Name: "Audios", Extensions: []string{".mp3", ".wav", ".aac", ".flac", ".ogg", ".m4a", ".wma"}},
		{Name: "Videos", Extensions: []string{".mp4", ".avi", ".mov", ".mkv", ".wmv", ".flv", ".webm", ".mpeg"}},
		{Name: "Pictures", Extensions: []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff", ".webp", ".svg", ".heic"}},
		{Name: "Archives", Extensions: []string{".zip", ".rar", ".7z", ".tar", ".gz", ".bz2", ".xz", ".iso", ".cab"}},
		{Name: "Executables", Extensions: []string{".exe", ".msi", ".sh", ".bat", ".app", ".apk", ".bin", ".deb", ".rpm"}},
		{Name: "Scripts", Extensions: []string{".py", ".js", ".ts", ".bat", ".ps1", ".rb", ".pl", ".sh", ".lua"}},
		{Name: "Website_Languages", Extensions: []string{".html", ".htm", ".css", ".js", ".php", ".asp", ".jsp"}},
		{Name: "Databases", Extensions: []string{".sql", ".db", ".sqlite", ".accdb", ".mdb"}},
		{Name: "Fonts", Extensions: []string{".ttf", ".otf", ".woff", ".woff2"}},
		{Name: "3D_Models", Extensions: []string{".obj", ".fbx", ".stl", ".dae", ".3ds", ".blend"}},
		{Name: "Designs", Extensions: []string{".psd", ".ai", ".xd", ".fig", ".sketch"}},
		{Name: "Code", Extensions: []string{".c", ".cpp", ".java", ".cs", ".go", ".swift", ".rs", ".kt"}},
		{Name: "Logs", Extensions: []string{".log"}},
		{Name: "Configs", Extensions: []string{".ini", ".cfg", ".conf", ".yaml", ".yml", ".json", ".xml"}},
		{Name: "Backups", Extensions: []string{".bak", ".old", ".tmp"}},
	}
}

// Names returns the category names in declaration order.
func (t *CategoryTable) Names() []string {
	names := make([]string, len(t.categories))
	for i, c := range t.categories {
		names[i] = c.Name
	}
	return names
}

// Lookup returns the category for a file path and whether one matched.
func (t *CategoryTable) Lookup(path string) (string, bool) {
	ext := Extension(path)
	if ext == "" {
		return "", false
	}
	name, ok := t.byExt[ext]
	return name, ok
}

// Categorize partitions files into category buckets. Every category has a
// key in the result, even when its bucket is empty. Files whose extension
// matches no category are left out of every bucket.
func (t *CategoryTable) Categorize(files []string) map[string][]string {
	categorized := make(map[string][]string, len(t.categories))
	for _, c := range t.categories {
		categorized[c.Name] = []string{}
	}
	for _, f := range files {
		if name, ok := t.Lookup(f); ok {
			categorized[name] = append(categorized[name], f)
		}
	}
	return categorized
}

// Unmatched returns the files Categorize would drop.
func (t *CategoryTable) Unmatched(files []string) []string {
	var out []string
	for _, f := range files {
		if _, ok := t.Lookup(f); !ok {
			out = append(out, f)
		}
	}
	return out
}

// Extension returns the lower-cased extension of path including the leading
// dot. Leading dots of the base name do not start an extension, so
// ".bashrc" has none.
func Extension(path string) string {
	base := strings.TrimLeft(filepath.Base(path), ".")
	i := strings.LastIndex(base, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(base[i:])
}

func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
