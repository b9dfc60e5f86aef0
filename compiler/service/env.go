package service

import (
	"context"
	"os"
	"strings"

	"github.com/moby/moby/client"
	"github.com/to404hanga/pkg404/logger"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

// Environment is where a compile request will actually run.
type Environment int

const (
	EnvironmentLocal Environment = iota
	EnvironmentSiblingContainer
	EnvironmentComposeService
)

func (e Environment) String() string {
	switch e {
	case EnvironmentLocal:
		return "local"
	case EnvironmentSiblingContainer:
		return "sibling_container"
	case EnvironmentComposeService:
		return "compose_service"
	default:
		return "unknown"
	}
}

// Detector decides the execution environment for a request. The decision is
// made per request from filesystem and daemon probes and never persisted.
type Detector struct {
	log              loggerv2.Logger
	client           *client.Client
	workspaceRoot    string
	managedMountPath string // 既定 /app
	siblingName      string
}

func NewDetector(log loggerv2.Logger, c *client.Client, workspaceRoot, managedMountPath, siblingName string) *Detector {
	if managedMountPath == "" {
		managedMountPath = "/app"
	}
	return &Detector{
		log:              log,
		client:           c,
		workspaceRoot:    workspaceRoot,
		managedMountPath: managedMountPath,
		siblingName:      siblingName,
	}
}

// Detect probes in order: running inside the managed container, a reachable
// sibling engine container, then the compose fallback.
func (d *Detector) Detect(ctx context.Context) Environment {
	if d.insideManagedContainer() {
		return EnvironmentLocal
	}
	if d.siblingReachable(ctx) {
		return EnvironmentSiblingContainer
	}
	return EnvironmentComposeService
}

func (d *Detector) insideManagedContainer() bool {
	if _, err := os.Stat(d.managedMountPath); err != nil {
		return false
	}
	return strings.HasPrefix(d.workspaceRoot, d.managedMountPath)
}

func (d *Detector) siblingReachable(ctx context.Context) bool {
	if d.client == nil || d.siblingName == "" {
		return false
	}
	filters := client.Filters{}
	filters.Add("name", d.siblingName)
	containers, err := d.client.ContainerList(ctx, client.ContainerListOptions{
		Filters: filters,
	})
	if err != nil {
		d.log.WarnContext(ctx, "list sibling container failed", logger.Error(err))
		return false
	}
	return len(containers.Items) > 0
}
