package models

/**
 * Server instance object (serialized to JSON format)
 * @property {string} name - Instance display name, also the directory name
 * @property {string} version - Version identifier of the installed server.jar
 * @property {string} channel - release/snapshot
 * @property {bool} exists - Whether the instance exists on disk
 * @property {string} path - Physical directory of the instance
 * @property {bool} autostart - Whether the connector starts it on load
 * @property {bool} running - Whether the server process is alive
 */
type ServerDetail struct {
	Name       string       `json:"name"`
	Version    string       `json:"version"`
	Channel    string       `json:"channel"`
	Exists     bool         `json:"exists"`
	Path       string       `json:"path"`
	Autostart  bool         `json:"autostart"`
	Running    bool         `json:"running"`
	Properties any          `json:"properties,omitempty"`
	Runner     RunnerDetail `json:"runner"`
}

type CreateServerRequest struct {
	Name     string `json:"name" binding:"required"`
	Version  string `json:"version"`
	Snapshot bool   `json:"snapshot"`
}

type UpdateServerRequest struct {
	Version  string `json:"version"`
	Snapshot bool   `json:"snapshot"`
}

type CommandRequest struct {
	Command string `json:"command" binding:"required"`
}

type LogResponse struct {
	Name  string   `json:"name"`
	Lines []string `json:"lines"`
	Log   string   `json:"log"`
}

type LatestVersions struct {
	Release  string `json:"release"`
	Snapshot string `json:"snapshot"`
}
