// Package shell is a line oriented REPL over the service
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/brettbedarf/mirrorfs"
	"github.com/brettbedarf/mirrorfs/filesystem"
	"github.com/brettbedarf/mirrorfs/internal/util"
	"github.com/brettbedarf/mirrorfs/service"
)

const (
	prompt       = "> "
	msgMalformed = "Unknown or malformed command"
)

type Shell struct {
	svc *service.Service
	in  io.Reader
	out io.Writer
}

func New(svc *service.Service, in io.Reader, out io.Writer) *Shell {
	return &Shell{svc: svc, in: in, out: out}
}

// Run reads commands until exit, end of input or ctx cancellation
func (s *Shell) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	for {
		fmt.Fprint(s.out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !s.Exec(ctx, scanner.Text()) {
			return nil
		}
	}
}

// Exec runs one command line. It returns false once the shell should stop.
func (s *Shell) Exec(ctx context.Context, line string) bool {
	args := strings.Fields(line)
	if len(args) == 0 {
		return true
	}
	logger := util.GetLogger("Shell")
	logger.Debug().Strs("args", args).Msg("Command")

	cmd, rest := args[0], args[1:]
	switch {
	case cmd == "mkdir" && len(rest) == 1:
		s.mkdir(ctx, rest[0])
	case cmd == "create" && len(rest) == 1:
		s.create(ctx, rest[0])
	case cmd == "write" && len(rest) >= 2:
		s.update(ctx, rest[0], strings.Join(rest[1:], " "), s.svc.WriteFile, "Written to")
	case cmd == "append" && len(rest) >= 2:
		s.update(ctx, rest[0], strings.Join(rest[1:], " "), s.svc.AppendFile, "Appended to")
	case cmd == "read" && len(rest) == 1:
		s.read(rest[0])
	case cmd == "delete" && len(rest) == 1:
		s.delete(ctx, rest[0])
	case cmd == "ls" && len(rest) <= 1:
		p := ""
		if len(rest) == 1 {
			p = rest[0]
		}
		s.ls(p)
	case cmd == "download" && len(rest) == 1:
		s.download(ctx, rest[0])
	case cmd == "deletecloud" && len(rest) == 1:
		s.deleteCloud(ctx, rest[0])
	case cmd == "restoreall" && len(rest) == 0:
		s.restoreAll(ctx)
	case cmd == "syncfolder" && len(rest) == 1:
		s.syncFolder(ctx, rest[0])
	case cmd == "reload" && len(rest) == 0:
		if err := s.svc.Reload(ctx); err != nil {
			s.printf("Error: %v", err)
			return true
		}
		s.printf("Reloaded")
	case cmd == "exit":
		s.printf("Exiting...")
		return false
	default:
		s.printf(msgMalformed)
	}
	return true
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format+"\n", args...)
}

func (s *Shell) warn(report mirrorfs.Report) {
	for _, w := range report.Warnings {
		s.printf("warning: %v", w)
	}
}

func (s *Shell) mkdir(ctx context.Context, p string) {
	report, err := s.svc.CreateDirectory(ctx, p)
	switch {
	case errors.Is(err, filesystem.ErrAlreadyExists):
		s.printf("Directory already exists: %s", p)
	case err != nil:
		s.printf("Invalid path: %s (%v)", p, err)
	default:
		s.warn(report)
		s.printf("Directory created at %s", p)
	}
}

func (s *Shell) create(ctx context.Context, p string) {
	report, err := s.svc.CreateFile(ctx, p)
	switch {
	case errors.Is(err, filesystem.ErrInvalidName):
		s.printf("Invalid file path: %s", p)
	case err != nil:
		s.printf("Invalid path: %s (%v)", p, err)
	default:
		s.warn(report)
		s.printf("File created at %s", p)
	}
}

func (s *Shell) update(ctx context.Context, p, content string, op func(context.Context, string, string) (mirrorfs.Report, error), done string) {
	report, err := op(ctx, p, content)
	switch {
	case errors.Is(err, filesystem.ErrNotFound):
		s.printf("File not found in memory: %s", p)
	case err != nil:
		s.printf("Error: %v", err)
	default:
		s.warn(report)
		s.printf("%s %s", done, p)
	}
}

func (s *Shell) read(p string) {
	content, err := s.svc.ReadFile(p)
	if err != nil {
		s.printf("File not found: %s", p)
		return
	}
	s.printf("Contents of %s: %s", p, content)
}

func (s *Shell) delete(ctx context.Context, p string) {
	report, err := s.svc.DeleteLocal(ctx, p)
	if err != nil {
		s.printf("Path not found in memory: %s", p)
		return
	}
	s.warn(report)
	s.printf("Deleted: %s", p)
}

func (s *Shell) ls(p string) {
	infos, err := s.svc.List(p)
	if err != nil {
		s.printf("Not a directory: %s", p)
		return
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	s.printf("Contents: %s", strings.Join(names, " "))
}

func (s *Shell) download(ctx context.Context, name string) {
	report, err := s.svc.Download(ctx, name)
	if err != nil {
		s.printf("Error: %v", err)
		return
	}
	s.warn(report)
	s.printf("Downloaded %s from cloud", name)
}

func (s *Shell) deleteCloud(ctx context.Context, p string) {
	name, err := s.svc.DeleteCloud(ctx, p)
	if err != nil {
		s.printf("Error: %v", err)
		return
	}
	s.printf("Deleted %s from cloud", name)
}

func (s *Shell) restoreAll(ctx context.Context) {
	report, err := s.svc.RestoreAll(ctx)
	if err != nil {
		s.printf("Error: %v", err)
		return
	}
	s.warn(report)
	s.printf("All files restored from cloud")
}

func (s *Shell) syncFolder(ctx context.Context, p string) {
	n, report, err := s.svc.SyncFolder(ctx, p)
	if err != nil {
		s.printf("Error: %v", err)
		return
	}
	s.warn(report)
	s.printf("Synced %d files from %s", n, p)
}
