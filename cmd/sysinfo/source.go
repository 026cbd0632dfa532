package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/opd-ai/go-sysinfo/internal/config"
	"github.com/opd-ai/go-sysinfo/pkg/source"
	"github.com/opd-ai/go-sysinfo/pkg/sysinfo"
)

// newSystem builds the source described by cfg and a System reading it.
// The returned function releases the source.
func newSystem(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sysinfo.System, func(), error) {
	opts := sysinfo.Options{
		DiskPath: cfg.DiskPath,
		Logger:   sysinfo.NewSlogAdapter(logger),
	}

	if cfg.Remote == nil {
		opts.Source = source.NewLocal(cfg.ProcRoot)
		return sysinfo.New(opts), func() {}, nil
	}

	ssh, err := source.DialSSH(ctx, sshConfig(cfg.Remote, logger))
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to %s: %w", cfg.Remote.Host, err)
	}
	opts.Source = ssh
	if opts.DiskPath == "" {
		opts.DiskPath = "/"
	}
	closeFn := func() {
		if err := ssh.Close(); err != nil {
			logger.Warn("closing ssh connection", "host", cfg.Remote.Host, "error", err)
		}
	}
	return sysinfo.New(opts), closeFn, nil
}

func sshConfig(r *config.RemoteConfig, logger *slog.Logger) source.SSHConfig {
	var auth source.AuthMethod
	switch {
	case r.Password != "":
		auth = source.PasswordAuth{Password: r.Password}
	case r.KeyFile != "":
		auth = source.KeyAuth{PrivateKeyPath: r.KeyFile, Passphrase: r.Passphrase}
	case r.Agent:
		auth = source.AgentAuth{}
	}
	return source.SSHConfig{
		Host:           r.Host,
		Port:           r.Port,
		User:           r.User,
		Auth:           auth,
		KnownHostsPath: r.KnownHosts,
		CommandTimeout: r.CommandTimeout,
		Logger:         logger.With("host", r.Host),
	}
}
