package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/gin-gonic/gin"

	"riverside/utils"
)

// FormsController lists and serves the downloadable PDF forms kept in
// the forms directory.
type FormsController struct {
	dir string
}

// NewFormsController creates a FormsController over dir, creating it if
// needed.
func NewFormsController(dir string) (*FormsController, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FormsController{dir: dir}, nil
}

// ListForms returns the PDF filenames available for download.
func (f *FormsController) ListForms(ctx *gin.Context) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50095, "failed to list forms")
		return
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".pdf" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	utils.Success(ctx, gin.H{"forms": names})
}

// DownloadPDF serves one form as an attachment. The filename parameter
// is reduced to its base name so it cannot escape the forms directory.
func (f *FormsController) DownloadPDF(ctx *gin.Context) {
	name := filepath.Base(ctx.Param("filename"))
	if name == "." || name == string(filepath.Separator) || filepath.Ext(name) != ".pdf" {
		utils.Error(ctx, http.StatusNotFound, 40450, "form not found")
		return
	}
	path := filepath.Join(f.dir, name)
	if _, err := os.Stat(path); err != nil {
		utils.Error(ctx, http.StatusNotFound, 40450, "form not found")
		return
	}
	ctx.FileAttachment(path, name)
}
