package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/System-rat/mcsmp/internal/models"
	"github.com/System-rat/mcsmp/internal/properties"
	"github.com/System-rat/mcsmp/services"

	"github.com/gin-gonic/gin"
)

const defaultLogLimit = 100

type ServerController struct {
	connector *services.Connector
}

/**
 * Create new server controller instance
 * @param {*services.Connector} connector - Connector owning the managed servers
 * @returns {*ServerController} New server controller instance
 * @example
 * connector := services.NewConnector(cfg, catalog)
 * controller := controllers.NewServerController(connector)
 */
func NewServerController(connector *services.Connector) *ServerController {
	return &ServerController{
		connector: connector,
	}
}

/**
 * Register all server API routes to Gin engine
 * @param {*gin.Engine} r - Gin router instance
 * @description
 * - Registers routes for:
 *   - Server management (list/create/get/delete/update)
 *   - Server process (start/stop/command/log)
 *   - server.properties (get/put)
 */
func (s *ServerController) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/mcsmp/api/v1")
	api.GET("/servers", s.ListServers)
	api.GET("/servers/running", s.RunningServers)
	api.POST("/servers", s.CreateServer)
	api.GET("/servers/:name", s.GetServer)
	api.DELETE("/servers/:name", s.DeleteServer)
	api.POST("/servers/:name/start", s.StartServer)
	api.POST("/servers/:name/stop", s.StopServer)
	api.POST("/servers/:name/command", s.SendCommand)
	api.POST("/servers/:name/update", s.UpdateServer)
	api.PUT("/servers/:name/autostart", s.SetAutostart)
	api.GET("/servers/:name/log", s.GetLog)
	api.GET("/servers/:name/properties", s.GetProperties)
	api.PUT("/servers/:name/properties", s.PutProperties)
}

func details(servers []*services.ManagedServer) []models.ServerDetail {
	results := make([]models.ServerDetail, 0, len(servers))
	for _, m := range servers {
		results = append(results, m.Detail(false))
	}
	return results
}

// ListServers lists managed servers
//
//	@Summary		List servers
//	@Description	List servers, optionally filtered by a case-insensitive name fragment
//	@Tags			Servers
//	@Produce		json
//	@Param			name	query		string	false	"Name filter"
//	@Success		200		{array}		models.ServerDetail
//	@Router			/mcsmp/api/v1/servers [get]
func (s *ServerController) ListServers(c *gin.Context) {
	c.JSON(200, details(s.connector.Servers(c.Query("name"))))
}

// RunningServers lists servers whose process is alive
//
//	@Summary		List running servers
//	@Tags			Servers
//	@Produce		json
//	@Success		200	{array}	models.ServerDetail
//	@Router			/mcsmp/api/v1/servers/running [get]
func (s *ServerController) RunningServers(c *gin.Context) {
	c.JSON(200, details(s.connector.RunningServers()))
}

// CreateServer creates and downloads a new server instance
//
//	@Summary		Create server
//	@Tags			Servers
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.CreateServerRequest	true	"Server name and version"
//	@Success		201		{object}	models.ServerDetail
//	@Failure		409		{object}	models.ErrorResponse	"Server already exists"
//	@Failure		502		{object}	models.ErrorResponse	"Download failed"
//	@Router			/mcsmp/api/v1/servers [post]
func (s *ServerController) CreateServer(c *gin.Context) {
	var req models.CreateServerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	m, err := s.connector.CreateServer(c.Request.Context(), req.Name, req.Version, req.Snapshot)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m.Detail(true))
}

// GetServer returns one server including its properties
//
//	@Summary		Get server
//	@Tags			Servers
//	@Produce		json
//	@Param			name	path		string	true	"Server name"
//	@Success		200		{object}	models.ServerDetail
//	@Failure		404		{object}	models.ErrorResponse	"Server not found"
//	@Router			/mcsmp/api/v1/servers/{name} [get]
func (s *ServerController) GetServer(c *gin.Context) {
	m, err := s.connector.Server(c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, m.Detail(true))
}

// DeleteServer stops and deletes a server
//
//	@Summary		Delete server
//	@Tags			Servers
//	@Param			name	path		string	true	"Server name"
//	@Success		200		{object}	map[string]interface{}
//	@Failure		404		{object}	models.ErrorResponse	"Server not found"
//	@Router			/mcsmp/api/v1/servers/{name} [delete]
func (s *ServerController) DeleteServer(c *gin.Context) {
	name := c.Param("name")
	if err := s.connector.DeleteServer(c.Request.Context(), name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"name": name, "deleted": true})
}

// StartServer starts the server process
//
//	@Summary		Start server
//	@Tags			Servers
//	@Param			name	path		string	true	"Server name"
//	@Success		200		{object}	models.ServerDetail
//	@Failure		404		{object}	models.ErrorResponse	"Server not found"
//	@Failure		500		{object}	models.ErrorResponse	"Process could not be spawned"
//	@Router			/mcsmp/api/v1/servers/{name}/start [post]
func (s *ServerController) StartServer(c *gin.Context) {
	name := c.Param("name")
	if err := s.connector.StartServer(name); err != nil {
		respondError(c, err)
		return
	}
	s.respondDetail(c, name)
}

// StopServer sends the shutdown command and waits for exit
//
//	@Summary		Stop server
//	@Tags			Servers
//	@Param			name	path		string	true	"Server name"
//	@Success		200		{object}	models.ServerDetail
//	@Failure		404		{object}	models.ErrorResponse	"Server not found"
//	@Router			/mcsmp/api/v1/servers/{name}/stop [post]
func (s *ServerController) StopServer(c *gin.Context) {
	name := c.Param("name")
	if err := s.connector.StopServer(c.Request.Context(), name); err != nil {
		respondError(c, err)
		return
	}
	s.respondDetail(c, name)
}

// SendCommand writes a console command to the server
//
//	@Summary		Send console command
//	@Tags			Servers
//	@Accept			json
//	@Param			name	path		string					true	"Server name"
//	@Param			body	body		models.CommandRequest	true	"Command"
//	@Success		200		{object}	map[string]interface{}
//	@Failure		409		{object}	models.ErrorResponse	"Server is not running"
//	@Router			/mcsmp/api/v1/servers/{name}/command [post]
func (s *ServerController) SendCommand(c *gin.Context) {
	var req models.CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.connector.SendCommand(c.Param("name"), req.Command); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"status": "sent"})
}

// UpdateServer downloads another version of the server binary
//
//	@Summary		Update server
//	@Tags			Servers
//	@Accept			json
//	@Param			name	path		string						true	"Server name"
//	@Param			body	body		models.UpdateServerRequest	false	"Target version, latest release if empty"
//	@Success		200		{object}	map[string]interface{}
//	@Failure		409		{object}	models.ErrorResponse	"Server is running"
//	@Router			/mcsmp/api/v1/servers/{name}/update [post]
func (s *ServerController) UpdateServer(c *gin.Context) {
	var req models.UpdateServerRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	name := c.Param("name")
	updated, err := s.connector.UpdateServer(c.Request.Context(), name, req.Version, req.Snapshot)
	if err != nil {
		respondError(c, err)
		return
	}
	m, err := s.connector.Server(name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"updated": updated, "server": m.Detail(false)})
}

// SetAutostart toggles the .autostart marker
//
//	@Summary		Set autostart
//	@Tags			Servers
//	@Param			name	path		string	true	"Server name"
//	@Param			enabled	query		bool	true	"Start the server when the connector loads"
//	@Success		200		{object}	models.ServerDetail
//	@Router			/mcsmp/api/v1/servers/{name}/autostart [put]
func (s *ServerController) SetAutostart(c *gin.Context) {
	enabled, err := strconv.ParseBool(c.DefaultQuery("enabled", "true"))
	if err != nil {
		badRequest(c, err)
		return
	}
	name := c.Param("name")
	m, err := s.connector.Server(name)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := m.Instance.SetAutostart(enabled); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, m.Detail(false))
}

// GetLog returns the newest output lines
//
//	@Summary		Server log
//	@Tags			Servers
//	@Produce		json
//	@Param			name	path		string	true	"Server name"
//	@Param			limit	query		int		false	"Number of lines, default 100"
//	@Success		200		{object}	models.LogResponse
//	@Failure		404		{object}	models.ErrorResponse	"Server not found"
//	@Router			/mcsmp/api/v1/servers/{name}/log [get]
func (s *ServerController) GetLog(c *gin.Context) {
	limit := defaultLogLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(c, errors.New("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	name := c.Param("name")
	lines, err := s.connector.Log(name, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, models.LogResponse{Name: name, Lines: lines, Log: strings.Join(lines, "\n")})
}

// GetProperties returns server.properties as JSON
//
//	@Summary		Get properties
//	@Tags			Properties
//	@Produce		json
//	@Param			name	path		string	true	"Server name"
//	@Success		200		{object}	map[string]interface{}
//	@Router			/mcsmp/api/v1/servers/{name}/properties [get]
func (s *ServerController) GetProperties(c *gin.Context) {
	m, err := s.connector.Server(c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, m.Instance.Properties())
}

// PutProperties validates and writes server.properties
//
//	@Summary		Update properties
//	@Description	All values are validated before anything is written
//	@Tags			Properties
//	@Accept			json
//	@Produce		json
//	@Param			name	path		string					true	"Server name"
//	@Param			body	body		map[string]interface{}	true	"Properties keyed by in-memory name (max_players, rcon__port)"
//	@Success		200		{object}	map[string]interface{}
//	@Failure		422		{object}	models.ErrorResponse	"Unknown property or invalid value"
//	@Router			/mcsmp/api/v1/servers/{name}/properties [put]
func (s *ServerController) PutProperties(c *gin.Context) {
	var body map[properties.Key]any
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	m, err := s.connector.Server(c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := m.Instance.ApplyProperties(body); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, m.Instance.Properties())
}

func (s *ServerController) respondDetail(c *gin.Context, name string) {
	m, err := s.connector.Server(name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, m.Detail(false))
}
