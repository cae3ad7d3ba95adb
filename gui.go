package main

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/dustin/go-humanize"
)

// Viewer is a window showing the key and decoded text of one lock file
type Viewer struct {
	app         fyne.App
	window      fyne.Window
	currentFile string
	result      *Result
	keyInfo     *widget.Label
	textView    *widget.Entry
	chunkView   *widget.Entry
	statusBar   *widget.Label
	saveButton  *widget.Button
}

// newViewer creates a new Viewer
func newViewer(initialFile string) *Viewer {
	app := app.New()
	app.Settings().SetTheme(theme.DarkTheme())
	window := app.NewWindow("Lock File Viewer")
	window.Resize(fyne.NewSize(900, 600))

	return &Viewer{
		app:         app,
		window:      window,
		currentFile: initialFile,
	}
}

// Run builds the window and blocks until it is closed
func (v *Viewer) Run() {
	openButton := widget.NewButtonWithIcon("Open .lock File", theme.FolderOpenIcon(), func() {
		fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, v.window)
				return
			}
			if reader == nil {
				return // cancelled
			}
			reader.Close()
			v.loadLockFile(uriToPath(reader.URI()))
		}, v.window)
		fd.SetFilter(storage.NewExtensionFileFilter([]string{lockSuffix}))
		fd.Show()
	})

	v.saveButton = widget.NewButtonWithIcon("Save Clear Text", theme.DocumentSaveIcon(), func() {
		if v.result == nil {
			dialog.ShowInformation("Error", "Please open a lock file first", v.window)
			return
		}

		saveDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, v.window)
				return
			}
			if writer == nil {
				return // cancelled
			}
			uri := writer.URI()
			// Written through writeOutputFile instead, so a failure leaves nothing behind
			writer.Close()
			if uri.Scheme() != "file" {
				v.showError(fmt.Sprintf("Unsupported URI scheme: %s", uri.Scheme()))
				return
			}
			v.saveClearText(uriToPath(uri))
		}, v.window)
		saveDialog.SetFileName(clearFileName(v.currentFile))
		saveDialog.Show()
	})
	v.saveButton.Disable()

	v.keyInfo = widget.NewLabel("No lock file loaded")
	v.keyInfo.Wrapping = fyne.TextWrapWord

	v.textView = widget.NewMultiLineEntry()
	v.textView.Wrapping = fyne.TextWrapWord
	v.textView.Disable()

	v.chunkView = widget.NewMultiLineEntry()
	v.chunkView.TextStyle = fyne.TextStyle{Monospace: true}
	v.chunkView.Disable()

	v.statusBar = widget.NewLabel("Open a .lock file to decode it")

	tabs := container.NewAppTabs(
		container.NewTabItem("Text", v.textView),
		container.NewTabItem("Chunks", v.chunkView),
	)

	content := container.NewBorder(
		container.NewVBox(
			container.NewHBox(openButton, v.saveButton),
			v.keyInfo,
			widget.NewSeparator(),
		),
		v.statusBar,
		nil, nil,
		tabs,
	)
	v.window.SetContent(content)

	if v.currentFile != "" {
		v.loadLockFile(v.currentFile)
	}

	v.window.Show()
	v.app.Run()
}

// loadLockFile decodes a lock file and shows the result
func (v *Viewer) loadLockFile(path string) {
	v.statusBar.SetText(fmt.Sprintf("Loading %s...", path))

	data, err := readLockFile(path)
	if err != nil {
		v.showError(err.Error())
		return
	}

	var chunks strings.Builder
	result, err := decodeLock(data, newHexPrinter(&chunks, false))
	if err != nil {
		v.result = nil
		v.saveButton.Disable()
		v.chunkView.SetText(chunks.String())
		v.showError(fmt.Sprintf("Unable to decode %s: %v", filepath.Base(path), err))
		return
	}

	v.currentFile = path
	v.result = result
	v.keyInfo.SetText(fmt.Sprintf("File: %s\nSize: %s\nKey: %s(%d of %d bytes found)",
		filepath.Base(path),
		humanize.Bytes(uint64(len(data))),
		result.Key,
		result.Found,
		KeySize,
	))
	v.textView.SetText(result.Text)
	v.chunkView.SetText(chunks.String())
	v.saveButton.Enable()

	v.statusBar.SetText(fmt.Sprintf("Decoded %s (%d characters)", filepath.Base(path), len([]rune(result.Text))))
}

func (v *Viewer) saveClearText(path string) {
	if err := writeOutputFile(path, v.result.Output); err != nil {
		v.showError(err.Error())
		return
	}
	v.statusBar.SetText(fmt.Sprintf("Saved %s", path))
}

func (v *Viewer) showError(message string) {
	log.Error(message)
	v.statusBar.SetText("Error: " + message)
	dialog.ShowError(fmt.Errorf("%s", message), v.window)
}

func uriToPath(uri fyne.URI) string {
	path := uri.Path()
	if runtime.GOOS == "windows" {
		path = filepath.FromSlash(strings.TrimPrefix(path, "/"))
	}
	return path
}

// clearFileName suggests an output name: "file.txt.lock" becomes "file.txt"
func clearFileName(lockPath string) string {
	name := strings.TrimSuffix(filepath.Base(lockPath), lockSuffix)
	if name == "" || name == "." || name == filepath.Base(lockPath) {
		return defaultClearPath
	}
	return name
}
