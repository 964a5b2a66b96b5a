package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"sfm/internal/sfm"
)

var menuItems = []string{
	"Store File",
	"List All Files with Directory",
	"List Directories",
	"List Files From Exact Directory",
	"Remove Files in Exact Folder by Date",
	"Remove Folder",
	"Delete Empty Folders",
	"Preview Files in Folder",
	"Generate Hash of File",
	"Exit",
}

// errExit ends the menu loop without error.
var errExit = errors.New("exit")

// readLines feeds the lines of r into the returned channel, closing it at
// EOF. The reading goroutine lives until r is exhausted.
func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

// menu is the numbered interactive front end over a Service. Input comes
// from a line channel so an interrupt can end a pending prompt.
type menu struct {
	ctx   context.Context
	svc   *sfm.Service
	base  string
	lines <-chan string
	out   io.Writer
}

func newMenu(ctx context.Context, svc *sfm.Service, base string, lines <-chan string, out io.Writer) *menu {
	return &menu{ctx: ctx, svc: svc, base: base, lines: lines, out: out}
}

// ask prints prompt and waits for one line of input.
func (m *menu) ask(prompt string) (string, error) {
	color.New(color.FgCyan).Fprint(m.out, prompt)
	select {
	case <-m.ctx.Done():
		fmt.Fprintln(m.out)
		return "", m.ctx.Err()
	case line, ok := <-m.lines:
		if !ok {
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	}
}

// run shows the menu until the user exits, input ends or ctx is done.
func (m *menu) run() error {
	for {
		m.printMenu()
		choice, err := m.ask(fmt.Sprintf("Choose an option (1-%d): ", len(menuItems)))
		if err != nil {
			return ignoreEOF(err)
		}

		err = m.dispatch(choice)
		switch {
		case errors.Is(err, errExit):
			fmt.Fprintln(m.out, "Exiting program.")
			return nil
		case errors.Is(err, io.EOF), errors.Is(err, context.Canceled):
			return ignoreEOF(err)
		case err != nil:
			color.New(color.FgRed).Fprintf(m.out, "Error: %v\n", err)
		}
	}
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (m *menu) printMenu() {
	bold := color.New(color.Bold)
	yellow := color.New(color.FgYellow)

	bold.Fprintln(m.out, "\n===== Smart File Manager =====")
	for i, item := range menuItems {
		fmt.Fprintf(m.out, "%s %s\n", yellow.Sprintf("%2d.", i+1), item)
	}
}

func (m *menu) dispatch(choice string) error {
	switch choice {
	case "1":
		return m.storeFile()
	case "2":
		return m.listAll()
	case "3":
		return m.listFolders()
	case "4":
		return m.listFolderFiles()
	case "5":
		return m.deleteByDate()
	case "6":
		return m.deleteFolder()
	case "7":
		return m.deleteEmptyFolders()
	case "8":
		return m.previewFiles()
	case "9":
		return m.hashFile()
	case "10":
		return errExit
	default:
		color.New(color.FgRed).Fprintf(m.out, "Invalid option. Please choose between 1-%d.\n", len(menuItems))
		return nil
	}
}

func (m *menu) storeFile() error {
	name, err := m.ask("Enter file name: ")
	if err != nil {
		return err
	}
	ext, err := m.ask("Enter file extension (e.g., txt): ")
	if err != nil {
		return err
	}

	rec := sfm.NewFileRecord(m.base, name, ext)
	created, moved, err := m.svc.StoreFile(rec)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(m.out, "Created %s\n", rec.FullName())
	} else {
		fmt.Fprintf(m.out, "%s already exists.\n", rec.FullName())
	}
	m.printFailures(moved.Failed)
	color.New(color.FgGreen).Fprintf(m.out, "Files successfully sorted (%d moved).\n", len(moved.Moved))
	return nil
}

func (m *menu) listAll() error {
	files, err := m.svc.ListAll(m.base)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(m.out, "No files found.")
		return nil
	}

	rows := make([][]string, 0, len(files))
	for _, f := range files {
		size := humanize.Bytes(uint64(f.Size))
		name := f.Name
		if f.IsDir {
			size = "-"
			name += string(filepath.Separator)
		}
		folder := f.Folder
		if folder == "" {
			folder = "."
		}
		rows = append(rows, []string{folder, name, size, humanize.Time(f.ModTime)})
	}
	fmt.Fprintln(m.out, renderTable(
		[]string{"Folder", "Name", "Size", "Modified"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	))
	return nil
}

func (m *menu) listFolders() error {
	folders, err := m.svc.ListFolders(m.base)
	if err != nil {
		return err
	}
	if len(folders) == 0 {
		fmt.Fprintln(m.out, "No folders found.")
		return nil
	}
	for _, f := range folders {
		fmt.Fprintf(m.out, "Folder: %s\n", f)
	}
	return nil
}

func (m *menu) listFolderFiles() error {
	folder, err := m.ask("Enter directory name: ")
	if err != nil {
		return err
	}
	names, err := m.svc.ListFolderFiles(m.base, folder)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(m.out, "Folder is empty.")
		return nil
	}
	for _, n := range names {
		fmt.Fprintf(m.out, "  %s\n", n)
	}
	return nil
}

func (m *menu) deleteByDate() error {
	folder, err := m.ask("Enter directory name: ")
	if err != nil {
		return err
	}
	start, err := m.ask("Enter start date (YYYY-MM-DD): ")
	if err != nil {
		return err
	}
	end, err := m.ask("Enter end date (YYYY-MM-DD): ")
	if err != nil {
		return err
	}

	result, err := m.svc.DeleteByDate(m.base, folder, start, end)
	if err != nil {
		return err
	}
	for _, p := range result.Deleted {
		fmt.Fprintf(m.out, "Deleted: %s\n", p)
	}
	m.printFailures(result.Failed)
	fmt.Fprintf(m.out, "%d file(s) deleted.\n", len(result.Deleted))
	return nil
}

func (m *menu) deleteFolder() error {
	folder, err := m.ask("Enter folder name to delete: ")
	if err != nil {
		return err
	}
	removed, err := m.svc.DeleteFolder(m.base, folder)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Deleted folder: %s\n", removed)
	return nil
}

func (m *menu) deleteEmptyFolders() error {
	result, err := m.svc.DeleteEmptyFolders(m.base)
	if err != nil {
		return err
	}
	for _, p := range result.Deleted {
		fmt.Fprintf(m.out, "Deleted empty folder: %s\n", p)
	}
	m.printFailures(result.Failed)
	if len(result.Deleted) == 0 {
		fmt.Fprintln(m.out, "No empty folders found.")
	}
	return nil
}

func (m *menu) previewFiles() error {
	folder, err := m.ask("Enter directory name: ")
	if err != nil {
		return err
	}
	files, err := m.svc.PreviewFiles(m.base, folder)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(m.out, "No files found in the directory.")
		return nil
	}

	for i, f := range files {
		fmt.Fprintf(m.out, "[%d] %s\n", i+1, f)
	}
	confirm, err := m.ask("Proceed with action on these files? (y/n): ")
	if err != nil {
		return err
	}
	if strings.EqualFold(confirm, "y") {
		fmt.Fprintln(m.out, "Confirmed.")
	} else {
		fmt.Fprintln(m.out, "Cancelled.")
	}
	return nil
}

func (m *menu) hashFile() error {
	folder, err := m.ask("Enter folder name: ")
	if err != nil {
		return err
	}
	name, err := m.ask("Enter file name: ")
	if err != nil {
		return err
	}
	digest, err := m.svc.HashFile(m.base, folder, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "SHA256 Hash: %s\n", digest)
	return nil
}

func (m *menu) printFailures(failures []sfm.Failure) {
	red := color.New(color.FgRed)
	for _, f := range failures {
		red.Fprintf(m.out, "  failed: %s\n", f.Error())
	}
}
