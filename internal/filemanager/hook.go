package filemanager

import (
	"pdfdesk/internal/infra/logx"
)

// SelectHook receives the details of a selected PDF.
type SelectHook func(FileDetails)

// LogPDFSelection is the default hook. It logs the selection and, when
// status is non-nil, reports it there too.
func LogPDFSelection(status func(string)) SelectHook {
	return func(fd FileDetails) {
		msg := "PDF selected: " + fd.Name
		logx.Log(logx.LevelInfo, msg, logx.Fields{"path": fd.FilterPath, "size": fd.Size})
		if status != nil {
			status(msg)
		}
	}
}

// OnSelect invokes hook for PDF files only and reports whether it fired.
func OnSelect(fd FileDetails, hook SelectHook) bool {
	if hook == nil || !fd.IsPDF() {
		return false
	}
	hook(fd)
	return true
}
