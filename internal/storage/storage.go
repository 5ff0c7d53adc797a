package storage

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/dpshade/llm-prompts/internal/errors"
	"github.com/dpshade/llm-prompts/internal/models"
)

const (
	// PromptExtension is the suffix a file needs to be loaded as a prompt
	PromptExtension = ".yml"

	// DefaultVersion is used when no version file exists
	DefaultVersion = "0.1.0"
)

// ReadVersion returns the trimmed first line of the version file.
// A missing or blank file is not an error: a warning is logged and
// DefaultVersion returned.
func ReadVersion(fsys afero.Fs, path string, logger *log.Logger) (string, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			warnVersion(logger, fmt.Sprintf("%s file not found, using default version %s", path, DefaultVersion))
			return DefaultVersion, nil
		}
		return "", errors.FilesystemError("read version file "+path, err)
	}

	version := strings.TrimSpace(string(data))
	if i := strings.IndexAny(version, "\r\n"); i >= 0 {
		version = strings.TrimSpace(version[:i])
	}
	if version == "" {
		warnVersion(logger, fmt.Sprintf("%s file is empty, using default version %s", path, DefaultVersion))
		return DefaultVersion, nil
	}
	return version, nil
}

func warnVersion(logger *log.Logger, message string) {
	if logger == nil {
		return
	}
	warn := errors.NewAppError(errors.ErrCodeMissingVersionFile, message)
	logger.Warn(warn.Message, "code", warn.Code)
}

// LoadPrompts parses every *.yml file directly inside dir.
//
// Files are visited in name order. Each record gets its trigger normalized
// and the source base name attached under models.KeyFilename in the same pass.
func LoadPrompts(fsys afero.Fs, dir string) (models.PromptSet, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, errors.FilesystemError("list prompts directory "+dir, err)
	}

	prompts := models.PromptSet{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), PromptExtension) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		prompt, err := LoadPrompt(fsys, path)
		if err != nil {
			return nil, err
		}
		prompts = append(prompts, prompt)
	}

	return prompts, nil
}

// LoadPrompt parses a single prompt file
func LoadPrompt(fsys afero.Fs, path string) (models.Prompt, error) {
	content, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.FilesystemError("read prompt file "+path, err)
	}

	prompt, err := parsePromptFile(content)
	if err != nil {
		return nil, errors.ParseError(path, err)
	}

	prompt.NormalizeTrigger()
	base := filepath.Base(path)
	prompt[models.KeyFilename] = strings.TrimSuffix(base, filepath.Ext(base))

	return prompt, nil
}

// WriteFile writes content, creating missing parent directories
func WriteFile(fsys afero.Fs, path string, content []byte) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.FilesystemError("create directory "+filepath.Dir(path), err)
	}
	if err := afero.WriteFile(fsys, path, content, 0644); err != nil {
		return errors.FilesystemError("write "+path, err)
	}
	return nil
}

// CopyFile copies src to dst byte for byte, overwriting dst
func CopyFile(fsys afero.Fs, src, dst string) error {
	srcFile, err := fsys.Open(src)
	if err != nil {
		return errors.FilesystemError("open "+src, err)
	}
	defer srcFile.Close()

	dstFile, err := fsys.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return errors.FilesystemError("create "+dst, err)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return errors.FilesystemError("copy "+src+" to "+dst, err)
	}
	if err := dstFile.Close(); err != nil {
		return errors.FilesystemError("close "+dst, err)
	}
	return nil
}

func parsePromptFile(content []byte) (models.Prompt, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(content))

	var node yaml.Node
	if err := decoder.Decode(&node); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty document")
		}
		return nil, err
	}

	var extra yaml.Node
	if err := decoder.Decode(&extra); !stderrors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("expected a single document, found another at line %d", extra.Line)
	}

	doc := &node
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("document is not a mapping (line %d)", doc.Line)
	}

	var prompt models.Prompt
	if err := doc.Decode(&prompt); err != nil {
		return nil, err
	}
	if prompt == nil {
		prompt = models.Prompt{}
	}

	return prompt, nil
}
