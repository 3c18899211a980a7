package runtime

// JSON field names below are the Engine API's own (PascalCase, "Id",
// "IP", "ImageID"); they are part of the wire contract.

// ContainerSpec holds the parameters for POST /containers/create
type ContainerSpec struct {
	Hostname        string            `json:"Hostname,omitempty"`
	User            string            `json:"User,omitempty"`
	AttachStdin     bool              `json:"AttachStdin"`
	AttachStdout    bool              `json:"AttachStdout"`
	AttachStderr    bool              `json:"AttachStderr"`
	Tty             bool              `json:"Tty"`
	OpenStdin       bool              `json:"OpenStdin"`
	StdinOnce       bool              `json:"StdinOnce"`
	Env             []string          `json:"Env,omitempty"`        // KEY=VALUE
	Cmd             []string          `json:"Cmd,omitempty"`        // argv
	Entrypoint      []string          `json:"Entrypoint,omitempty"` // overrides the image entrypoint when set
	Image           string            `json:"Image"`
	Labels          map[string]string `json:"Labels,omitempty"`
	WorkingDir      string            `json:"WorkingDir,omitempty"`
	NetworkDisabled bool              `json:"NetworkDisabled,omitempty"`
	HostConfig      HostConfig        `json:"HostConfig"`
}

// HostConfig is the subset of the engine's host configuration cargo-sandbox sets
type HostConfig struct {
	Binds       []string `json:"Binds,omitempty"` // hostpath:containerpath[:options]
	NetworkMode string   `json:"NetworkMode,omitempty"`
	AutoRemove  bool     `json:"AutoRemove,omitempty"`
}

// CreateResponse is the body of a successful create
type CreateResponse struct {
	ID       string   `json:"Id"`
	Warnings []string `json:"Warnings"`
}

// ContainerSummary is one entry of GET /containers/json
type ContainerSummary struct {
	ID         string            `json:"Id"`
	Names      []string          `json:"Names"`
	Image      string            `json:"Image"`
	ImageID    string            `json:"ImageID"`
	Command    string            `json:"Command"`
	Created    int64             `json:"Created"`
	Ports      []Port            `json:"Ports"`
	Labels     map[string]string `json:"Labels"`
	State      ContainerState    `json:"State"`
	Status     string            `json:"Status"` // human readable, e.g. "Exited (0) 5 minutes ago"
	HostConfig struct {
		NetworkMode string `json:"NetworkMode"`
	} `json:"HostConfig"`
}

// ShortID returns the 12 character form of the container ID
func (c *ContainerSummary) ShortID() string {
	if len(c.ID) > 12 {
		return c.ID[:12]
	}
	return c.ID
}

// Port is a port exposed by a container
type Port struct {
	IP          string `json:"IP,omitempty"`
	PrivatePort uint16 `json:"PrivatePort"`
	PublicPort  uint16 `json:"PublicPort,omitempty"`
	Type        string `json:"Type"` // tcp, udp or sctp
}

// ListOptions filters GET /containers/json
type ListOptions struct {
	All     bool                // include stopped containers
	Limit   int                 // most recently created N containers, 0 for no limit
	Filters map[string][]string // e.g. {"label": ["k=v"]}
}

// RemoveOptions controls DELETE /containers/{id}
type RemoveOptions struct {
	Force         bool // kill a running container first
	RemoveVolumes bool // remove anonymous volumes
}

// WaitResponse is the body of POST /containers/{id}/wait
type WaitResponse struct {
	StatusCode int64      `json:"StatusCode"`
	Error      *WaitError `json:"Error,omitempty"`
}

// WaitError is set when the engine could not determine the exit status
type WaitError struct {
	Message string `json:"Message"`
}

// ExecSpec holds the parameters for POST /containers/{id}/exec
type ExecSpec struct {
	AttachStdin  bool     `json:"AttachStdin"`
	AttachStdout bool     `json:"AttachStdout"`
	AttachStderr bool     `json:"AttachStderr"`
	DetachKeys   string   `json:"DetachKeys,omitempty"`
	Tty          bool     `json:"Tty"`
	Cmd          []string `json:"Cmd"`
	Env          []string `json:"Env,omitempty"`
	WorkingDir   string   `json:"WorkingDir,omitempty"`
	User         string   `json:"User,omitempty"`
}

// execCreateResponse is the body of a successful exec create
type execCreateResponse struct {
	ID string `json:"Id"`
}

// ExecStartOptions is the body of POST /exec/{id}/start
type ExecStartOptions struct {
	Detach bool `json:"Detach"`
	Tty    bool `json:"Tty"`
}

// ExecInspect is the subset of GET /exec/{id}/json cargo-sandbox reads
type ExecInspect struct {
	ID          string `json:"ID"`
	ContainerID string `json:"ContainerID"`
	Running     bool   `json:"Running"`
	ExitCode    int    `json:"ExitCode"`
	Pid         int    `json:"Pid"`
}

// errorBody is the engine's error envelope
type errorBody struct {
	Message string `json:"message"`
}
