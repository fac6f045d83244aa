package compressors

import (
	"strings"
	"testing"

	"pdfcompressor/internal/domain/entities"
)

func TestGhostscriptArgs_Presets(t *testing.T) {
	tests := []struct {
		name            string
		preset          entities.Preset
		dpi             int
		expectedSetting string
		expectedDPI     string
	}{
		{"Lossless uses default settings", entities.PresetLossless, 0, "-dPDFSETTINGS=/default", "-dColorImageResolution=300"},
		{"Balanced uses printer settings", entities.PresetBalanced, 0, "-dPDFSETTINGS=/printer", "-dColorImageResolution=200"},
		{"Aggressive uses screen settings", entities.PresetAggressive, 0, "-dPDFSETTINGS=/screen", "-dColorImageResolution=120"},
		{"Custom has no PDFSETTINGS", entities.PresetCustom, 150, "", "-dColorImageResolution=150"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := entities.NewCompressionConfig(tt.preset, tt.dpi)
			args := ghostscriptArgs("in.pdf", "out.pdf", config)

			if tt.expectedSetting != "" && !containsArg(args, tt.expectedSetting) {
				t.Errorf("Expected %s in args: %v", tt.expectedSetting, args)
			}
			if tt.expectedSetting == "" {
				for _, arg := range args {
					if strings.HasPrefix(arg, "-dPDFSETTINGS=") {
						t.Errorf("Custom preset must not set PDFSETTINGS, got %s", arg)
					}
				}
			}
			if !containsArg(args, tt.expectedDPI) {
				t.Errorf("Expected %s in args: %v", tt.expectedDPI, args)
			}
		})
	}
}

func TestGhostscriptArgs_Common(t *testing.T) {
	config := entities.NewCompressionConfig(entities.PresetBalanced, 0)
	config.JPEGQuality = 60
	args := ghostscriptArgs("/docs/in.pdf", "/tmp/out.pdf", config)

	required := []string{
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.5",
		"-dDetectDuplicateImages=true",
		"-dGrayImageResolution=200",
		"-dJPEGQ=60",
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		"-sOutputFile=/tmp/out.pdf",
	}
	for _, want := range required {
		if !containsArg(args, want) {
			t.Errorf("Expected %s in args: %v", want, args)
		}
	}

	// Входной файл идет последним аргументом
	if args[len(args)-1] != "/docs/in.pdf" {
		t.Errorf("Expected input path as last arg, got %s", args[len(args)-1])
	}
}

func containsArg(args []string, want string) bool {
	for _, arg := range args {
		if arg == want {
			return true
		}
	}
	return false
}
