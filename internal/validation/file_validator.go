package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Blaise762/FemTechBI-MVP/internal/dataprocessing"
	"github.com/Blaise762/FemTechBI-MVP/pkg/contracts/domain"
)

// FileValidator checks the local files handed to the command line tools
type FileValidator struct {
	logger   *slog.Logger
	maxBytes int64
}

// NewFileValidator creates a new file validator. Inputs larger than maxBytes
// are rejected; zero disables the limit.
func NewFileValidator(logger *slog.Logger, maxBytes int64) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger:   logger,
		maxBytes: maxBytes,
	}
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return nil, fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return nil, fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return info, nil
}

// ValidateInputTable checks that path is a readable table file in a
// supported format and returns that format. Office lock files (~$name) are
// refused.
func (v *FileValidator) ValidateInputTable(path string) (domain.Format, error) {
	info, err := v.ValidateFile(path)
	if err != nil {
		return "", err
	}

	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Refusing temporary Excel file",
			slog.String("file", path))
		return "", fmt.Errorf("file %s is a temporary Excel file", path)
	}

	if v.maxBytes > 0 && info.Size() > v.maxBytes {
		v.logger.Error("File exceeds size limit",
			slog.String("file", path),
			slog.Int64("size", info.Size()),
			slog.Int64("limit", v.maxBytes))
		return "", fmt.Errorf("file %s is %d bytes, limit is %d", path, info.Size(), v.maxBytes)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv", ".txt", ".xlsx", ".xlsm":
	default:
		v.logger.Error("Unsupported table file",
			slog.String("file", path),
			slog.String("extension", ext))
		return "", fmt.Errorf("file %s is not a CSV or Excel table (extension: %s)", path, ext)
	}

	return dataprocessing.FormatFromFilename(path), nil
}

// ValidateOutputFile ensures the parent directory of path exists or can be
// created and is writable, and that the extension names an export format
func (v *FileValidator) ValidateOutputFile(path string) (domain.ExportFormat, error) {
	var format domain.ExportFormat
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		format = domain.ExportCSV
	case ".xlsx":
		format = domain.ExportXLSX
	default:
		return "", fmt.Errorf("output %s must end in .csv or .xlsx", path)
	}

	if err := v.ValidateOutputDirectory(filepath.Dir(path)); err != nil {
		return "", err
	}
	return format, nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}
