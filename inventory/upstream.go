// Package inventory serves cloud and cluster resource listings through a
// TimedCache and invalidates them when the console changes a resource.
package inventory

//go:generate mockgen -source=upstream.go -destination=mock_upstream_test.go -package=inventory

import (
	"context"
	"time"
)

// Kind names a resource collection. It is the operation segment of cache keys.
type Kind string

const (
	Instances   Kind = "instances"
	Volumes     Kind = "volumes"
	Networks    Kind = "networks"
	Pods        Kind = "pods"
	Deployments Kind = "deployments"
	Nodes       Kind = "nodes"
)

// DefaultKinds is what a Service manages unless told otherwise.
var DefaultKinds = []Kind{Instances, Volumes, Networks, Pods, Deployments, Nodes}

type Resource struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Status    string            `json:"status"`
	Cloud     string            `json:"cloud"`
	Kind      Kind              `json:"kind"`
	CreatedAt time.Time         `json:"created_at"`
	Attrs     map[string]string `json:"attrs,omitempty"`
}

// Query selects one page of a listing. Filtering, sorting and paging are done
// by the upstream.
type Query struct {
	Page     int
	PageSize int
	Sort     string
	Status   string
	Search   string
}

type Page struct {
	Items    []Resource `json:"items"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

// Upstream is the OpenStack/Kubernetes side. Every call may be slow.
type Upstream interface {
	List(ctx context.Context, kind Kind, cloud string, q Query) (Page, error)
	Get(ctx context.Context, kind Kind, cloud, id string) (Resource, error)
	Delete(ctx context.Context, kind Kind, cloud, id string) error
	// Act runs a lifecycle action such as "reboot" or "pause".
	Act(ctx context.Context, kind Kind, cloud, id, action string) error
}
