// Package excel exposes spreadsheet extraction actions for OOXML workbooks
// (.xlsx and friends). Extraction is a straight read-through: open with
// excelize, trim empty rows/columns, render in an agent-friendly format and
// report document metadata. Embedded pictures can be saved alongside.
package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/aretw0/workbench"
)

// supportedExtensions is the explicit allow-list for this collection.
// Legacy binary .xls is not readable by excelize and is rejected as an
// unsupported type.
var supportedExtensions = []string{".xlsx", ".xlsm", ".xltx", ".xltm"}

const defaultMaxFileSize = 100 << 20 // 100 MiB

const mediaDirName = "extracted_media"

// DocumentMetadata describes an extracted workbook.
type DocumentMetadata struct {
	FileName      string   `json:"file_name"`
	FilePath      string   `json:"file_path"`
	FileSizeBytes int64    `json:"file_size_bytes"`
	ModifiedAt    string   `json:"modified_at"`
	FileType      string   `json:"file_type"`
	MimeType      string   `json:"mime_type"`
	TotalSheets   int      `json:"total_sheets"`
	SheetNames    []string `json:"sheet_names"`
	TotalRows     int      `json:"total_rows"`
	TotalColumns  int      `json:"total_columns"`
}

// MediaFile describes one embedded picture saved to the workspace.
type MediaFile struct {
	Type     string `json:"type"`
	Path     string `json:"path"`
	Sheet    string `json:"sheet"`
	Filename string `json:"filename"`
}

// sheetData is the extraction outcome for one worksheet. A per-sheet read
// failure is recorded here instead of failing the whole workbook.
type sheetData struct {
	Name          string
	Rows          [][]string
	NonEmptyCells int
	Err           string
}

type extraction struct {
	Sheets       []sheetData
	TotalSheets  int
	TotalRows    int
	TotalColumns int
	Duration     time.Duration
}

// Collection provides the spreadsheet extraction action set.
type Collection struct {
	*workbench.Base
	maxFileSize int64
}

// Option configures a Collection.
type Option func(*Collection)

// WithMaxFileSize overrides the pre-parse byte ceiling.
func WithMaxFileSize(n int64) Option {
	return func(c *Collection) {
		if n > 0 {
			c.maxFileSize = n
		}
	}
}

// NewCollection builds the excel collection.
func NewCollection(cfg workbench.Config, opts ...Option) (*Collection, error) {
	base, err := workbench.NewBase(cfg, "excel", supportedExtensions...)
	if err != nil {
		return nil, err
	}
	c := &Collection{Base: base, maxFileSize: defaultMaxFileSize}
	for _, opt := range opts {
		opt(c)
	}
	c.Logger().Info("excel extraction service initialized", "workspace", c.Workspace())
	return c, nil
}

// Actions returns the registration table.
func (c *Collection) Actions() []workbench.Action {
	return []workbench.Action{
		{
			Name:        "extract_workbook",
			Description: "Extract content from an Excel workbook: worksheets rendered in an agent-friendly format plus document metadata, optionally saving embedded images.",
			Params: []workbench.Param{
				{Name: "file_path", Type: workbench.ParamString, Description: "Path to the workbook, relative to the workspace.", Required: true},
				{Name: "output_format", Type: workbench.ParamString, Description: "Output format: 'markdown', 'json', 'csv' or 'text'."},
				{Name: "sheet_names", Type: workbench.ParamString, Description: "Comma-separated sheet names to process (all sheets when omitted)."},
				{Name: "extract_images", Type: workbench.ParamBoolean, Description: "Save embedded pictures under the workspace media directory."},
			},
			Handler: c.extractWorkbook,
		},
		{
			Name:        "list_supported_formats",
			Description: "List the spreadsheet formats this collection can extract.",
			Handler:     c.listSupportedFormats,
		},
	}
}

type extractArgs struct {
	FilePath      string `mapstructure:"file_path"`
	OutputFormat  string `mapstructure:"output_format"`
	SheetNames    string `mapstructure:"sheet_names"`
	ExtractImages bool   `mapstructure:"extract_images"`
}

func (c *Collection) extractWorkbook(ctx context.Context, args map[string]any) workbench.Response {
	var a extractArgs
	if err := workbench.DecodeArgs(args, &a); err != nil {
		return workbench.FromError(err)
	}

	path, err := c.Sandbox().ValidateFilePath(a.FilePath)
	if err != nil {
		c.Logger().Warn("workbook rejected", "path", a.FilePath, "err", err)
		return workbench.FromError(err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return workbench.FromError(workbench.NotFoundf("the file does not exist: %s", path))
	}
	if stat.Size() > c.maxFileSize {
		return workbench.FromError(workbench.SizeLimitf(
			"workbook size %d exceeds the maximum of %d bytes", stat.Size(), c.maxFileSize))
	}

	var wanted []string
	if a.SheetNames != "" {
		for _, name := range strings.Split(a.SheetNames, ",") {
			wanted = append(wanted, strings.TrimSpace(name))
		}
	}

	c.Logger().Info("processing workbook", "path", path)
	result, err := extractContent(path, wanted)
	if err != nil {
		return workbench.FromError(workbench.Internalf("cannot extract workbook: %v", err))
	}

	var media []MediaFile
	if a.ExtractImages {
		media = c.extractPictures(path)
	}

	meta := DocumentMetadata{
		FileName:      filepath.Base(path),
		FilePath:      path,
		FileSizeBytes: stat.Size(),
		ModifiedAt:    stat.ModTime().UTC().Format(time.RFC3339),
		FileType:      "Excel Workbook",
		MimeType:      detectMime(path),
		TotalSheets:   result.TotalSheets,
		SheetNames:    sheetNames(result),
		TotalRows:     result.TotalRows,
		TotalColumns:  result.TotalColumns,
	}

	return workbench.SuccessWithMetadata(
		formatExtraction(result, a.OutputFormat),
		responseMetadata(meta, media, result.Duration),
	)
}

func (c *Collection) listSupportedFormats(ctx context.Context, args map[string]any) workbench.Response {
	descriptions := []string{
		"**XLSX**: Excel 2007+ workbook - full support including embedded images",
		"**XLSM**: macro-enabled workbook - data and images (macros ignored)",
		"**XLTX/XLTM**: workbook templates - data only",
	}
	meta := map[string]any{
		"supported_extensions": c.Sandbox().Extensions(),
	}
	return workbench.SuccessWithMetadata(
		"Supported spreadsheet formats:\n\n"+strings.Join(descriptions, "\n"), meta)
}

// extractPictures saves every embedded picture under
// <workspace>/extracted_media. Per-picture failures are logged and skipped,
// never fatal.
func (c *Collection) extractPictures(path string) []MediaFile {
	mediaDir := filepath.Join(c.Workspace(), mediaDirName)
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		c.Logger().Warn("cannot create media directory", "dir", mediaDir, "err", err)
		return nil
	}

	f, err := openWorkbook(path)
	if err != nil {
		c.Logger().Warn("cannot reopen workbook for media extraction", "err", err)
		return nil
	}
	defer f.Close()

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var saved []MediaFile
	for _, sheet := range f.GetSheetList() {
		cells, err := f.GetPictureCells(sheet)
		if err != nil {
			c.Logger().Warn("cannot list pictures", "sheet", sheet, "err", err)
			continue
		}
		idx := 0
		for _, cell := range cells {
			pics, err := f.GetPictures(sheet, cell)
			if err != nil {
				c.Logger().Warn("cannot read picture", "sheet", sheet, "cell", cell, "err", err)
				continue
			}
			for _, pic := range pics {
				name := fmt.Sprintf("%s_%s_img_%d%s", stem, sheet, idx, pic.Extension)
				dest := filepath.Join(mediaDir, name)
				if err := os.WriteFile(dest, pic.File, 0o644); err != nil {
					c.Logger().Warn("cannot save picture", "file", name, "err", err)
					continue
				}
				saved = append(saved, MediaFile{Type: "image", Path: dest, Sheet: sheet, Filename: name})
				idx++
			}
		}
	}
	if len(saved) > 0 {
		c.Logger().Info("saved embedded media", "count", len(saved))
	}
	return saved
}

func detectMime(path string) string {
	m, err := mimetype.DetectFile(path)
	if err != nil {
		return "application/octet-stream"
	}
	return m.String()
}

func sheetNames(e *extraction) []string {
	names := make([]string, 0, len(e.Sheets))
	for _, s := range e.Sheets {
		names = append(names, s.Name)
	}
	return names
}

func responseMetadata(meta DocumentMetadata, media []MediaFile, d time.Duration) map[string]any {
	out := map[string]any{
		"file_name":       meta.FileName,
		"file_path":       meta.FilePath,
		"file_size_bytes": meta.FileSizeBytes,
		"modified_at":     meta.ModifiedAt,
		"file_type":       meta.FileType,
		"mime_type":       meta.MimeType,
		"total_sheets":    meta.TotalSheets,
		"sheet_names":     meta.SheetNames,
		"total_rows":      meta.TotalRows,
		"total_columns":   meta.TotalColumns,
		"duration":        d.String(),
	}
	if len(media) > 0 {
		out["media_files"] = media
	}
	return out
}
