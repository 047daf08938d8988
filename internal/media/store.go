package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"pocketguide/internal/tour"
)

// Category — раздел медиахранилища.
type Category string

const (
	CategoryImages    Category = "images"
	CategoryAudio     Category = "audio"
	CategoryVideos    Category = "videos"
	CategoryDocuments Category = "documents"
)

// Разрешенные расширения по разделам.
var allowedExtensions = map[Category]map[string]bool{
	CategoryImages:    set("jpg", "jpeg", "png", "gif", "webp", "bmp"),
	CategoryAudio:     set("mp3", "wav", "ogg", "m4a", "aac", "flac"),
	CategoryVideos:    set("mp4", "avi", "mov", "mkv", "webm", "flv", "wmv"),
	CategoryDocuments: set("pdf", "txt", "doc", "docx", "xls", "xlsx"),
}

func set(exts ...string) map[string]bool {
	m := make(map[string]bool, len(exts))
	for _, e := range exts {
		m[e] = true
	}
	return m
}

// MaxFileSize — предельный размер загружаемого файла (500 МиБ).
const MaxFileSize = 500 << 20

var (
	// ErrBadExtension — расширение файла не входит в список раздела.
	ErrBadExtension = errors.New("недопустимое расширение файла")
	// ErrFileTooLarge — файл превышает MaxFileSize.
	ErrFileTooLarge = errors.New("файл слишком большой")
	// ErrBadCategory — неизвестный раздел медиахранилища.
	ErrBadCategory = errors.New("неизвестный раздел медиа")
)

var (
	unsafeChars    = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	underscoreRuns = regexp.MustCompile(`_+`)
)

// Store — дисковое медиахранилище. Файлы лежат в подкаталогах по разделам,
// в базе хранится относительный путь вида media/images/city_1.jpg.
type Store struct {
	dir string // корневой каталог media
	log *zap.Logger
}

// NewStore создает хранилище и подкаталоги разделов.
func NewStore(dir string, log *zap.Logger) (*Store, error) {
	for cat := range allowedExtensions {
		if err := os.MkdirAll(filepath.Join(dir, string(cat)), 0o755); err != nil {
			return nil, fmt.Errorf("не удалось создать каталог медиа %s: %w", cat, err)
		}
	}
	return &Store{dir: dir, log: log}, nil
}

// Save сохраняет файл в раздел и возвращает относительный путь для базы.
// Имя очищается от небезопасных символов; при совпадении имен к файлу
// добавляется числовой суффикс перед расширением, существующие файлы
// не перезаписываются.
func (s *Store) Save(category Category, prefix, filename string, r io.Reader) (string, error) {
	exts, ok := allowedExtensions[category]
	if !ok {
		return "", ErrBadCategory
	}
	ext := extension(filename)
	if ext == "" || !exts[ext] {
		return "", fmt.Errorf("%w: .%s (раздел %s)", ErrBadExtension, ext, category)
	}

	base := sanitize(strings.TrimSuffix(filepath.Base(filename), "."+ext))
	if base == "" {
		base = "file"
	}

	target := filepath.Join(s.dir, string(category))
	name := prefix + base + "." + ext
	for counter := 1; ; counter++ {
		f, err := os.OpenFile(filepath.Join(target, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if os.IsExist(err) {
			name = fmt.Sprintf("%s%s_%d.%s", prefix, base, counter, ext)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("не удалось сохранить файл: %w", err)
		}

		written, err := io.Copy(f, io.LimitReader(r, MaxFileSize+1))
		closeErr := f.Close()
		if err == nil && closeErr != nil {
			err = closeErr
		}
		if err == nil && written > MaxFileSize {
			err = ErrFileTooLarge
		}
		if err != nil {
			os.Remove(filepath.Join(target, name))
			return "", fmt.Errorf("не удалось сохранить файл %s: %w", name, err)
		}

		rel := "media/" + string(category) + "/" + name
		s.log.Info("медиафайл сохранен", zap.String("path", rel), zap.Int64("bytes", written))
		return rel, nil
	}
}

// Delete удаляет файл по относительному пути из базы.
func (s *Store) Delete(ref string) error {
	abs, err := s.abs(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		if os.IsNotExist(err) {
			return tour.ErrNotFound
		}
		return fmt.Errorf("не удалось удалить файл %s: %w", ref, err)
	}
	s.log.Info("медиафайл удален", zap.String("path", ref))
	return nil
}

// Resolve переводит относительный путь из базы в абсолютный путь на диске.
// Отсутствующий файл — tour.ErrNotFound.
func (s *Store) Resolve(ref string) (string, error) {
	abs, err := s.abs(ref)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return "", tour.ErrNotFound
	}
	return abs, nil
}

// URL возвращает путь, по которому файл отдается HTTP-сервером админки.
func (s *Store) URL(ref string) string {
	return "/" + ref
}

// Dir возвращает корневой каталог хранилища (для статической раздачи).
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) abs(ref string) (string, error) {
	rest, ok := strings.CutPrefix(ref, "media/")
	if !ok || strings.Contains(ref, "..") {
		return "", fmt.Errorf("некорректный путь медиа: %q", ref)
	}
	return filepath.Join(s.dir, filepath.FromSlash(rest)), nil
}

func extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

func sanitize(name string) string {
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = underscoreRuns.ReplaceAllString(name, "_")
	return strings.Trim(name, "_.")
}
