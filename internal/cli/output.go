package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

func isattyFd(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func isTerminal(f *os.File) bool {
	return isattyFd(f.Fd())
}

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#007700", Dark: "#5FD75F"}).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD75F"}).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}).Bold(true)
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5F00AF", Dark: "#AF87FF"}).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6C6C6C", Dark: "#8A8A8A"})
)

// printer writes user-facing output. Colors are applied only when the
// destination is a terminal and --no-color is unset.
type printer struct {
	out   io.Writer
	err   io.Writer
	color bool
	quiet bool
}

func newPrinter(out, errOut io.Writer) *printer {
	color := !globalNoColor
	if f, ok := out.(*os.File); !ok || !isattyFd(f.Fd()) {
		color = false
	}
	return &printer{out: out, err: errOut, color: color, quiet: globalQuiet}
}

func (p *printer) styled(style lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return style.Render(s)
}

// info prints an informational message
func (p *printer) info(format string, args ...any) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, format+"\n", args...)
}

// success prints a success message
func (p *printer) success(format string, args ...any) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", p.styled(successStyle, "✓"), fmt.Sprintf(format, args...))
}

// warning prints a warning message
func (p *printer) warning(format string, args ...any) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", p.styled(warningStyle, "⚠"), fmt.Sprintf(format, args...))
}

// errorMsg prints an error message to the error stream, even when quiet.
func (p *printer) errorMsg(format string, args ...any) {
	fmt.Fprintf(p.err, "%s %s\n", p.styled(errorStyle, "✗"), fmt.Sprintf(format, args...))
}

// header prints a section header
func (p *printer) header(title string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, "\n%s\n", p.styled(headerStyle, "=== "+title+" ==="))
}

// detail prints an indented secondary line
func (p *printer) detail(format string, args ...any) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, "  %s\n", p.styled(mutedStyle, fmt.Sprintf(format, args...)))
}

// formatBytes formats bytes as human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
