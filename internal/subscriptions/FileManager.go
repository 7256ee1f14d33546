package subscriptions

import (
	"cvewatch/internal/models"
	"cvewatch/internal/providers"
	"cvewatch/internal/subscriptions/interfaces"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// FileManager reads and writes the watermark file.
type FileManager struct {
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		logger:     logger,
	}
}

func (f *FileManager) SaveToFile(fileName string, watermarks map[string]string) error {
	jsonData, err := json.Marshal(models.WatermarkFile{
		Version:    models.WatermarkFileVersion,
		Watermarks: watermarks,
	})
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

// LoadFromFile returns the stored watermarks. A missing file yields an empty map.
func (f *FileManager) LoadFromFile(fileName string) (map[string]string, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return nil, err
	}

	var envelope models.WatermarkFile
	if err := json.Unmarshal(decompressedData, &envelope); err == nil && envelope.Version > 0 {
		if envelope.Watermarks == nil {
			envelope.Watermarks = map[string]string{}
		}
		return envelope.Watermarks, nil
	}

	// Version 1 is a bare map, written either as JSON or as YAML.
	f.logger.Warnf(providers.TypeApp, "Watermark file %s has no version, try to migrate from bare map", fileName)
	legacy := map[string]string{}
	if err := yaml.Unmarshal(decompressedData, &legacy); err != nil {
		f.logger.Warnf(providers.TypeApp, "Migration failed")
		return nil, fmt.Errorf("unreadable watermark file %s: %w", fileName, err)
	}
	f.logger.Warnf(providers.TypeApp, "Migration from bare map successful, %d watermarks", len(legacy))
	return legacy, nil
}
