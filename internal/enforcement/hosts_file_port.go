package enforcement

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"warden/internal/config"
	"warden/internal/domain"
)

const denyFileHeader = "# Managed by warden. Do not edit; this file is rewritten on every change.\n"

// HostsFilePort materializes domain rules as an /etc/hosts-style deny file
// that a resolver or proxy can include. App and keyword rules have no hosts
// representation and are skipped.
type HostsFilePort struct {
	path string
}

// NewHostsFilePort writes to the given path, falling back to the configured
// deny file path when empty.
func NewHostsFilePort(path string) *HostsFilePort {
	if path == "" {
		path = config.DenyFilePath()
	}
	return &HostsFilePort{path: path}
}

func (p *HostsFilePort) Apply(ctx context.Context, rules []domain.BlockingRule) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var builder strings.Builder
	builder.WriteString(denyFileHeader)
	written := 0
	for _, rule := range rules {
		if rule.Kind != domain.RuleKindDomain || rule.Pattern == "" {
			continue
		}
		builder.WriteString("0.0.0.0 ")
		builder.WriteString(rule.Pattern)
		builder.WriteString("\n")
		written++
	}

	if err := p.write(builder.String()); err != nil {
		return fmt.Errorf("enforcement: write deny file: %w", err)
	}

	log.Debug("Deny file written", "path", p.path, "entries", written)
	return nil
}

func (p *HostsFilePort) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.write(denyFileHeader); err != nil {
		return fmt.Errorf("enforcement: clear deny file: %w", err)
	}
	return nil
}

// write replaces the deny file atomically so readers never see a torn file.
func (p *HostsFilePort) write(content string) error {
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".warden-deny-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, p.path)
}
