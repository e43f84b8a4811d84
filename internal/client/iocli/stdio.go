package iocli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Stdio reads from in and writes to out. When in is a terminal, secrets
// are read without echo.
type Stdio struct {
	out    io.Writer
	reader *bufio.Reader
	fd     int
	tty    bool
}

// NewStdio creates an IO on top of the given streams
func NewStdio(in io.Reader, out io.Writer) *Stdio {
	s := &Stdio{out: out, reader: bufio.NewReader(in), fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		s.fd = int(f.Fd())
		s.tty = true
	}
	return s
}

func (s *Stdio) Println(a ...any) {
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}

func (s *Stdio) ReadInput(prompt string) (string, error) {
	s.Printf("%s", prompt)
	input, err := s.reader.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// ReadSecret reads a line without echo on a terminal and as plain input otherwise
func (s *Stdio) ReadSecret(prompt string) (string, error) {
	if !s.tty {
		return s.ReadInput(prompt)
	}

	s.Printf("%s", prompt)
	secret, err := term.ReadPassword(s.fd)
	s.Println("") // Переход на новую строку после ввода
	if err != nil {
		return "", err
	}
	return string(secret), nil
}
