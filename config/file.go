package config

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"

	"github.com/alittlebrighter/bandstat"
)

var _ bandstat.ConfigProvider = (*FileProvider)(nil)

// FileProvider reads the band from the first line of a text file, e.g. "18.5 22".
// The file is opened again on every call so edits apply on the next cycle.
type FileProvider struct {
	Path string
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Path: path}
}

func (p *FileProvider) Band(ctx context.Context) (*bandstat.Band, error) {
	f, err := os.Open(p.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return ParseBand(line), nil
}
