// Service integration via github.com/kardianos/service. The same binary
// runs interactively, under systemd, or as a Windows service; the service
// layer only owns lifecycle, the poll loop itself lives in runApp.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/kardianos/service"
)

// stopTimeout bounds how long Stop waits for the poll loop to drain.
const stopTimeout = 30 * time.Second

// program implements service.Interface around the application run
// function. Start launches runApp in a goroutine; Stop cancels its
// context and waits for it to return.
type program struct {
	run    func(ctx context.Context) error
	cancel context.CancelFunc
	done   chan struct{}
	runErr error
}

func (p *program) Start(s service.Service) error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		p.runErr = p.run(ctx)
	}()
	return nil
}

func (p *program) Stop(s service.Service) error {
	p.cancel()
	select {
	case <-p.done:
		return p.runErr
	case <-time.After(stopTimeout):
		return fmt.Errorf("timeout waiting for poll loop to stop")
	}
}

// serviceConfig describes the installed service.
func serviceConfig() *service.Config {
	return &service.Config{
		Name:        "nowplaying",
		DisplayName: "Now Playing Display",
		Description: "Renders ABC Radio now-playing metadata to an e-paper image",
		Option: service.KeyValue{
			"StartType": "automatic",
		},
	}
}

// controlService performs an install/uninstall/start/stop action against
// the system service manager.
func controlService(action string) error {
	prg := &program{run: func(ctx context.Context) error { return nil }}
	svc, err := service.New(prg, serviceConfig())
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	if err := service.Control(svc, action); err != nil {
		return fmt.Errorf("service %s failed: %w", action, err)
	}
	return nil
}

// runningUnderServiceManager reports whether the process was launched by
// the system service manager rather than a terminal.
func runningUnderServiceManager() bool {
	return !service.Interactive()
}

// runUnderService hands the run function to the service manager's
// lifecycle. Blocks until the service is stopped.
func runUnderService(run func(ctx context.Context) error) error {
	prg := &program{run: run}
	svc, err := service.New(prg, serviceConfig())
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return svc.Run()
}
