package handler

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	configapp "github.com/storefront/backend/internal/application/configuration"
	"github.com/storefront/backend/internal/application/tasks"
	"github.com/storefront/backend/internal/domain/plugin"
	"github.com/storefront/backend/internal/domain/scheduling"
)

// SettingManager reads and writes setting rows
type SettingManager interface {
	GetAllSettings(ctx context.Context) (map[string][]configapp.CachedSetting, error)
	GetSetting(ctx context.Context, key string, storeID uuid.UUID, loadShared bool) (*configapp.CachedSetting, error)
	SetSetting(ctx context.Context, key string, value any, storeID uuid.UUID) error
	DeleteSetting(ctx context.Context, id uuid.UUID) error
}

// PluginManager lists and installs compiled-in plugins
type PluginManager interface {
	GetPluginDescriptors(ctx context.Context, mode plugin.LoadMode, storeID uuid.UUID, group string) ([]plugin.Descriptor, error)
	Install(ctx context.Context, systemName string) (plugin.Descriptor, error)
	Uninstall(ctx context.Context, systemName string) (plugin.Descriptor, error)
}

// CacheClearer drops every cached entry
type CacheClearer interface {
	Clear(ctx context.Context) error
}

// TaskManager administers schedule tasks
type TaskManager interface {
	GetAllTasks(ctx context.Context) ([]scheduling.ScheduleTask, error)
	UpdateTask(ctx context.Context, taskType string, req tasks.UpdateTaskRequest) (*scheduling.ScheduleTask, error)
	RunNow(ctx context.Context, taskType string) (*scheduling.ScheduleTask, error)
}

// SettingQuery filters the setting list
type SettingQuery struct {
	Search  string `form:"search" binding:"max=200"`
	StoreID string `form:"store_id" binding:"omitempty,uuid"`
}

// SetSettingRequest writes one setting row. A missing store_id writes the
// global row every store falls back to.
type SetSettingRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Value   string `json:"value" binding:"max=4000"`
	StoreID string `json:"store_id" binding:"omitempty,uuid"`
}

// PluginQuery filters the plugin list
type PluginQuery struct {
	Mode  string `form:"mode" binding:"omitempty,oneof=all installed not-installed"`
	Group string `form:"group" binding:"max=100"`
}

// TaskResponse is a schedule task with its last run
type TaskResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Type          string     `json:"type"`
	Seconds       int        `json:"seconds"`
	Enabled       bool       `json:"enabled"`
	StopOnError   bool       `json:"stop_on_error"`
	LastStartAt   *time.Time `json:"last_start_at,omitempty"`
	LastEndAt     *time.Time `json:"last_end_at,omitempty"`
	LastSuccessAt *time.Time `json:"last_success_at,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
}

func toTaskResponse(t *scheduling.ScheduleTask) TaskResponse {
	return TaskResponse{
		ID:            t.ID,
		Name:          t.Name,
		Type:          t.Type,
		Seconds:       t.Seconds,
		Enabled:       t.Enabled,
		StopOnError:   t.StopOnError,
		LastStartAt:   t.LastStartAt,
		LastEndAt:     t.LastEndAt,
		LastSuccessAt: t.LastSuccessAt,
		LastError:     t.LastError,
	}
}

func (q PluginQuery) loadMode() plugin.LoadMode {
	switch q.Mode {
	case "installed":
		return plugin.LoadInstalledOnly
	case "not-installed":
		return plugin.LoadNotInstalledOnly
	default:
		return plugin.LoadAll
	}
}

// SystemAdminHandler exposes settings, plugins, the cache and schedule tasks
type SystemAdminHandler struct {
	BaseHandler
	settings SettingManager
	plugins  PluginManager
	cache    CacheClearer
	tasks    TaskManager
}

// NewSystemAdminHandler creates a new SystemAdminHandler
func NewSystemAdminHandler(settings SettingManager, plugins PluginManager, cache CacheClearer, tasks TaskManager) *SystemAdminHandler {
	return &SystemAdminHandler{settings: settings, plugins: plugins, cache: cache, tasks: tasks}
}

// ListSettings godoc
// @Summary      List setting rows
// @Description  Rows are sorted by name; search matches a name substring
// @Tags         admin-system
// @Produce      json
// @Param        search query string false "Name contains"
// @Param        store_id query string false "Only rows of this store"
// @Success      200 {object} dto.Response{data=[]configapp.CachedSetting}
// @Security     BearerAuth
// @Router       /admin/settings [get]
func (h *SystemAdminHandler) ListSettings(c *gin.Context) {
	var q SettingQuery
	if !h.bindQuery(c, &q) {
		return
	}
	all, err := h.settings.GetAllSettings(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	search := strings.ToLower(q.Search)
	out := make([]configapp.CachedSetting, 0, len(all))
	for name, rows := range all {
		if search != "" && !strings.Contains(name, search) {
			continue
		}
		for _, row := range rows {
			if q.StoreID != "" && row.TenantID.String() != q.StoreID {
				continue
			}
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].TenantID.String() < out[j].TenantID.String()
	})
	h.Success(c, out)
}

// GetSetting godoc
// @Summary      Effective value of a setting
// @Description  Returns the row of the current store, or the global row when the store has none
// @Tags         admin-system
// @Produce      json
// @Param        name path string true "Setting name"
// @Success      200 {object} dto.Response{data=configapp.CachedSetting}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/settings/{name} [get]
func (h *SystemAdminHandler) GetSetting(c *gin.Context) {
	row, err := h.settings.GetSetting(c.Request.Context(), c.Param("name"), storeID(c), true)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if row == nil {
		h.NotFound(c, "Setting not found")
		return
	}
	h.Success(c, row)
}

// SetSetting godoc
// @Summary      Write a setting row
// @Tags         admin-system
// @Accept       json
// @Param        request body SetSettingRequest true "Setting"
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/settings [put]
func (h *SystemAdminHandler) SetSetting(c *gin.Context) {
	var req SetSettingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	target := uuid.Nil
	if req.StoreID != "" {
		target = uuid.MustParse(req.StoreID)
	}
	if err := h.settings.SetSetting(c.Request.Context(), req.Name, req.Value, target); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// DeleteSetting godoc
// @Summary      Delete a setting row
// @Tags         admin-system
// @Param        id path string true "Setting ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/settings/{id} [delete]
func (h *SystemAdminHandler) DeleteSetting(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.settings.DeleteSetting(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListPlugins godoc
// @Summary      List plugins
// @Tags         admin-system
// @Produce      json
// @Param        mode query string false "Install state" Enums(all, installed, not-installed)
// @Param        group query string false "Plugin group"
// @Success      200 {object} dto.Response{data=[]plugin.Descriptor}
// @Security     BearerAuth
// @Router       /admin/plugins [get]
func (h *SystemAdminHandler) ListPlugins(c *gin.Context) {
	var q PluginQuery
	if !h.bindQuery(c, &q) {
		return
	}
	descriptors, err := h.plugins.GetPluginDescriptors(c.Request.Context(), q.loadMode(), uuid.Nil, q.Group)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if descriptors == nil {
		descriptors = []plugin.Descriptor{}
	}
	h.Success(c, descriptors)
}

// InstallPlugin godoc
// @Summary      Install a plugin
// @Tags         admin-system
// @Produce      json
// @Param        systemName path string true "Plugin system name"
// @Success      200 {object} dto.Response{data=plugin.Descriptor}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/plugins/{systemName}/install [post]
func (h *SystemAdminHandler) InstallPlugin(c *gin.Context) {
	h.pluginAction(c, h.plugins.Install)
}

// UninstallPlugin godoc
// @Summary      Uninstall a plugin
// @Tags         admin-system
// @Produce      json
// @Param        systemName path string true "Plugin system name"
// @Success      200 {object} dto.Response{data=plugin.Descriptor}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/plugins/{systemName}/uninstall [post]
func (h *SystemAdminHandler) UninstallPlugin(c *gin.Context) {
	h.pluginAction(c, h.plugins.Uninstall)
}

func (h *SystemAdminHandler) pluginAction(c *gin.Context, action func(ctx context.Context, systemName string) (plugin.Descriptor, error)) {
	d, err := action(c.Request.Context(), c.Param("systemName"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, d)
}

// ClearCache godoc
// @Summary      Clear the cache
// @Tags         admin-system
// @Success      204
// @Security     BearerAuth
// @Router       /admin/cache [delete]
func (h *SystemAdminHandler) ClearCache(c *gin.Context) {
	if err := h.cache.Clear(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListTasks godoc
// @Summary      List schedule tasks
// @Tags         admin-system
// @Produce      json
// @Success      200 {object} dto.Response{data=[]TaskResponse}
// @Security     BearerAuth
// @Router       /admin/tasks [get]
func (h *SystemAdminHandler) ListTasks(c *gin.Context) {
	all, err := h.tasks.GetAllTasks(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]TaskResponse, len(all))
	for i := range all {
		out[i] = toTaskResponse(&all[i])
	}
	h.Success(c, out)
}

// UpdateTask godoc
// @Summary      Change a task schedule
// @Tags         admin-system
// @Accept       json
// @Produce      json
// @Param        type path string true "Task type"
// @Param        request body tasks.UpdateTaskRequest true "Schedule"
// @Success      200 {object} dto.Response{data=TaskResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/tasks/{type} [put]
func (h *SystemAdminHandler) UpdateTask(c *gin.Context) {
	var req tasks.UpdateTaskRequest
	if !h.bindJSON(c, &req) {
		return
	}
	task, err := h.tasks.UpdateTask(c.Request.Context(), c.Param("type"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTaskResponse(task))
}

// RunTask godoc
// @Summary      Run a task now
// @Description  Runs the task synchronously and returns its refreshed state
// @Tags         admin-system
// @Produce      json
// @Param        type path string true "Task type"
// @Success      200 {object} dto.Response{data=TaskResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/tasks/{type}/run [post]
func (h *SystemAdminHandler) RunTask(c *gin.Context) {
	task, err := h.tasks.RunNow(c.Request.Context(), c.Param("type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTaskResponse(task))
}
