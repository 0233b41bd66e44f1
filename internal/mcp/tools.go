package mcp

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/zx06/infkeychain/internal/config"
	"github.com/zx06/infkeychain/internal/errors"
	"github.com/zx06/infkeychain/internal/keychain"
	"github.com/zx06/infkeychain/internal/output"
)

// CredentialInput represents the input for get_password and delete_item
type CredentialInput struct {
	Username string `json:"username" jsonschema:"Account name"`
	Service  string `json:"service,omitempty" jsonschema:"Service name"`
	Profile  string `json:"profile,omitempty" jsonschema:"Profile whose service to use"`
}

// StoreInput represents the input for the store_password tool
type StoreInput struct {
	CredentialInput
	Password       string `json:"password" jsonschema:"Password to store"`
	UpdateExisting bool   `json:"update_existing,omitempty" jsonschema:"Overwrite an existing entry"`
}

// Options configures the tool handler
type Options struct {
	Backend     string
	Service     string // default service when neither service nor profile is given
	AllowReveal bool
}

// ToolHandler manages MCP tools
type ToolHandler struct {
	config   *config.File
	accessor *keychain.Accessor
	opts     Options
}

// NewToolHandler creates a new tool handler
func NewToolHandler(cfg *config.File, accessor *keychain.Accessor, opts Options) *ToolHandler {
	if cfg == nil {
		cfg = &config.File{Profiles: map[string]config.Profile{}}
	}
	return &ToolHandler{
		config:   cfg,
		accessor: accessor,
		opts:     opts,
	}
}

// getProfileNames returns a sorted list of available profile names
func (h *ToolHandler) getProfileNames() []string {
	names := make([]string, 0, len(h.config.Profiles))
	for name := range h.config.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (h *ToolHandler) credentialSchema(withPassword bool) *jsonschema.Schema {
	profileNames := h.getProfileNames()
	profileEnums := make([]any, len(profileNames))
	for i, name := range profileNames {
		profileEnums[i] = name
	}
	profile := &jsonschema.Schema{Type: "string", Description: "Profile whose service to use"}
	if len(profileEnums) > 0 {
		profile.Enum = profileEnums
	}
	s := &jsonschema.Schema{
		Type:     "object",
		Required: []string{"username"},
		Properties: map[string]*jsonschema.Schema{
			"username": {Type: "string", Description: "Account name"},
			"service":  {Type: "string", Description: "Service name (overrides profile)"},
			"profile":  profile,
		},
	}
	if withPassword {
		s.Required = append(s.Required, "password")
		s.Properties["password"] = &jsonschema.Schema{Type: "string", Description: "Password to store"}
		s.Properties["update_existing"] = &jsonschema.Schema{Type: "boolean", Description: "Overwrite an existing entry"}
	}
	return s
}

// RegisterTools registers all tools with the MCP server
func (h *ToolHandler) RegisterTools(server *mcp.Server) {
	// get_password only when revealing secrets is explicitly allowed
	if h.opts.AllowReveal {
		server.AddTool(&mcp.Tool{
			Name:        "get_password",
			Description: "Fetch the password stored for a username and service",
			InputSchema: h.credentialSchema(false),
		}, h.getPasswordHandler)
	}

	server.AddTool(&mcp.Tool{
		Name:        "store_password",
		Description: "Store or update the password for a username and service",
		InputSchema: h.credentialSchema(true),
	}, h.storePasswordHandler)

	server.AddTool(&mcp.Tool{
		Name:        "delete_item",
		Description: "Delete the stored entry for a username and service",
		InputSchema: h.credentialSchema(false),
	}, h.deleteItemHandler)

	mcp.AddTool[struct{}, any](server, &mcp.Tool{
		Name:        "profile_list",
		Description: "List all configured profiles",
	}, h.ProfileList)

	mcp.AddTool[struct{}, any](server, &mcp.Tool{
		Name:        "backend_list",
		Description: "List registered secure storage backends",
	}, h.BackendList)
}

func (h *ToolHandler) getPasswordHandler(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input CredentialInput
	if err := json.Unmarshal(req.Params.Arguments, &input); err != nil {
		return h.errorResult(errors.Wrap(errors.CodeCfgInvalid, "invalid input", nil, err)), nil
	}
	result, _, err := h.GetPassword(ctx, req, input)
	return result, err
}

func (h *ToolHandler) storePasswordHandler(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input StoreInput
	if err := json.Unmarshal(req.Params.Arguments, &input); err != nil {
		return h.errorResult(errors.Wrap(errors.CodeCfgInvalid, "invalid input", nil, err)), nil
	}
	result, _, err := h.StorePassword(ctx, req, input)
	return result, err
}

func (h *ToolHandler) deleteItemHandler(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input CredentialInput
	if err := json.Unmarshal(req.Params.Arguments, &input); err != nil {
		return h.errorResult(errors.Wrap(errors.CodeCfgInvalid, "invalid input", nil, err)), nil
	}
	result, _, err := h.DeleteItem(ctx, req, input)
	return result, err
}

// GetPassword fetches a stored password
func (h *ToolHandler) GetPassword(ctx context.Context, req *mcp.CallToolRequest, input CredentialInput) (*mcp.CallToolResult, any, error) {
	if !h.opts.AllowReveal {
		return h.errorResult(errors.New(errors.CodeCfgInvalid, "get_password is disabled; set mcp.allow_reveal to enable it", nil)), nil, nil
	}
	service, xe := h.resolveService(input)
	if xe != nil {
		return h.errorResult(xe), nil, nil
	}
	password, err := h.accessor.Password(ctx, input.Username, service)
	if err != nil {
		return h.errorResult(err), nil, nil
	}
	return h.okResult(map[string]any{
		"service":  service,
		"username": input.Username,
		"password": password,
	}), nil, nil
}

// StorePassword stores or updates a password
func (h *ToolHandler) StorePassword(ctx context.Context, req *mcp.CallToolRequest, input StoreInput) (*mcp.CallToolResult, any, error) {
	service, xe := h.resolveService(input.CredentialInput)
	if xe != nil {
		return h.errorResult(xe), nil, nil
	}
	if err := h.accessor.Store(ctx, input.Username, input.Password, service, input.UpdateExisting); err != nil {
		return h.errorResult(err), nil, nil
	}
	return h.okResult(map[string]any{
		"service":  service,
		"username": input.Username,
		"stored":   true,
	}), nil, nil
}

// DeleteItem deletes a stored entry
func (h *ToolHandler) DeleteItem(ctx context.Context, req *mcp.CallToolRequest, input CredentialInput) (*mcp.CallToolResult, any, error) {
	service, xe := h.resolveService(input)
	if xe != nil {
		return h.errorResult(xe), nil, nil
	}
	if err := h.accessor.Delete(ctx, input.Username, service); err != nil {
		return h.errorResult(err), nil, nil
	}
	return h.okResult(map[string]any{
		"service":  service,
		"username": input.Username,
		"deleted":  true,
	}), nil, nil
}

// ProfileList lists all profiles
func (h *ToolHandler) ProfileList(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
	type profileInfo struct {
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		Service     string `json:"service"`
		Backend     string `json:"backend,omitempty"`
	}

	profiles := make([]profileInfo, 0, len(h.config.Profiles))
	for _, name := range h.getProfileNames() {
		p := h.config.Profiles[name]
		profiles = append(profiles, profileInfo{
			Name:        name,
			Description: p.Description,
			Service:     p.Service,
			Backend:     p.Backend,
		})
	}
	return h.okResult(map[string]any{"profiles": profiles}), nil, nil
}

// BackendList lists registered backends
func (h *ToolHandler) BackendList(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
	return h.okResult(map[string]any{
		"backends": keychain.RegisteredNames(),
		"selected": h.opts.Backend,
	}), nil, nil
}

// resolveService picks service > profile.service > default service
func (h *ToolHandler) resolveService(input CredentialInput) (string, *errors.XError) {
	if input.Service != "" {
		return input.Service, nil
	}
	if input.Profile != "" {
		p, ok := h.config.Profiles[input.Profile]
		if !ok {
			return "", errors.New(errors.CodeCfgInvalid, "profile does not exist", map[string]any{"name": input.Profile, "reason": "profile_not_found"})
		}
		if p.Service != "" {
			return p.Service, nil
		}
	}
	// empty service is rejected by the accessor with the nil parameter code
	return h.opts.Service, nil
}

func (h *ToolHandler) okResult(data any) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(output.NewOK(data), "", "  ")
	if err != nil {
		return h.errorResult(errors.Wrap(errors.CodeInternal, "failed to marshal result", nil, err))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonData)},
		},
	}
}

func (h *ToolHandler) errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: h.formatError(err)},
		},
	}
}

// formatError formats an error as JSON
func (h *ToolHandler) formatError(err error) string {
	var xe *errors.XError
	if err != nil {
		xe = errors.AsOrWrap(err)
	} else {
		xe = errors.New(errors.CodeInternal, "unknown error", nil)
	}
	jsonData, _ := json.MarshalIndent(output.NewError(xe), "", "  ")
	return string(jsonData)
}

// CreateServer creates a new MCP server
func CreateServer(version string, cfg *config.File, accessor *keychain.Accessor, opts Options) (*mcp.Server, error) {
	if accessor == nil {
		return nil, errors.New(errors.CodeInternal, "keychain accessor is nil", nil)
	}
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "infkeychain",
		Version: version,
	}, nil)

	handler := NewToolHandler(cfg, accessor, opts)
	handler.RegisterTools(server)

	return server, nil
}
