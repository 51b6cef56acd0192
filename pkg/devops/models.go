package devops

import "time"

type PaginatedResponse[T any] struct {
	Count int `json:"count"`
	Value []T `json:"value"`
}

// PipelinePermission is a single pipeline entry in a permission update.
// Field order matches the wire format of the pipelinepermissions endpoint.
type PipelinePermission struct {
	Authorized bool `json:"authorized"`
	ID         int  `json:"id"`
}

// PipelinePermissionUpdate is the PATCH body of the pipelinepermissions
// endpoint.
type PipelinePermissionUpdate struct {
	Pipelines []PipelinePermission `json:"pipelines"`
}

type IdentityRef struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	UniqueName  string `json:"uniqueName"`
}

type Resource struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

type PermissionEntry struct {
	ID           int          `json:"id,omitempty"`
	Authorized   bool         `json:"authorized"`
	AuthorizedBy *IdentityRef `json:"authorizedBy,omitempty"`
	AuthorizedOn *time.Time   `json:"authorizedOn,omitempty"`
}

// ResourcePipelinePermissions is the GET response of the
// pipelinepermissions endpoint: which pipelines may use a resource.
type ResourcePipelinePermissions struct {
	Resource     Resource          `json:"resource"`
	AllPipelines *PermissionEntry  `json:"allPipelines,omitempty"`
	Pipelines    []PermissionEntry `json:"pipelines"`
}

// PipelineReference identifies a pipeline definition within a project.
type PipelineReference struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Folder   string `json:"folder"`
	Revision int    `json:"revision"`
	URL      string `json:"url"`
}
