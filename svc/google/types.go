package google

import "errors"

// ErrInvalidForm tags local validation failures; they never reach the
// network and never count against tier usage.
var ErrInvalidForm = errors.New("google: invalid form")

// ---- Tag Manager (GTM) resources ----

// Account is a GTM account.
type Account struct {
	Path      string `json:"path,omitempty"`
	AccountID string `json:"accountId,omitempty"`
	Name      string `json:"name"`
	ShareData bool   `json:"shareData,omitempty"`
}

// Validate checks the shape required for an account update.
func (a Account) Validate() error {
	if a.AccountID == "" {
		return errors.Join(ErrInvalidForm, errors.New("accountId is required"))
	}
	if a.Name == "" {
		return errors.Join(ErrInvalidForm, errors.New("name is required"))
	}
	return nil
}

// Container is a GTM container.
type Container struct {
	Path         string   `json:"path,omitempty"`
	AccountID    string   `json:"accountId"`
	ContainerID  string   `json:"containerId,omitempty"`
	Name         string   `json:"name"`
	PublicID     string   `json:"publicId,omitempty"`
	UsageContext []string `json:"usageContext"`
	Notes        string   `json:"notes,omitempty"`
}

// Validate checks the shape required for container mutations.
func (c Container) Validate() error {
	if c.AccountID == "" {
		return errors.Join(ErrInvalidForm, errors.New("accountId is required"))
	}
	if c.Name == "" {
		return errors.Join(ErrInvalidForm, errors.New("name is required"))
	}
	if len(c.UsageContext) == 0 {
		return errors.Join(ErrInvalidForm, errors.New("usageContext is required"))
	}
	return nil
}

// Workspace is a GTM container workspace.
type Workspace struct {
	Path        string `json:"path,omitempty"`
	AccountID   string `json:"accountId"`
	ContainerID string `json:"containerId"`
	WorkspaceID string `json:"workspaceId,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Validate checks the shape required for workspace mutations.
func (w Workspace) Validate() error {
	if w.AccountID == "" || w.ContainerID == "" {
		return errors.Join(ErrInvalidForm, errors.New("accountId and containerId are required"))
	}
	if w.Name == "" {
		return errors.Join(ErrInvalidForm, errors.New("name is required"))
	}
	return nil
}

// Parameter is a typed key/value on tags and variables.
type Parameter struct {
	Type  string `json:"type"`
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`
}

// Tag is a GTM workspace tag.
type Tag struct {
	Path            string      `json:"path,omitempty"`
	AccountID       string      `json:"accountId"`
	ContainerID     string      `json:"containerId"`
	WorkspaceID     string      `json:"workspaceId"`
	TagID           string      `json:"tagId,omitempty"`
	Name            string      `json:"name"`
	Type            string      `json:"type"`
	Parameter       []Parameter `json:"parameter,omitempty"`
	FiringTriggerID []string    `json:"firingTriggerId,omitempty"`
	Notes           string      `json:"notes,omitempty"`
}

// Validate checks the shape required for tag mutations.
func (t Tag) Validate() error {
	if t.AccountID == "" || t.ContainerID == "" || t.WorkspaceID == "" {
		return errors.Join(ErrInvalidForm, errors.New("accountId, containerId and workspaceId are required"))
	}
	if t.Name == "" || t.Type == "" {
		return errors.Join(ErrInvalidForm, errors.New("name and type are required"))
	}
	return nil
}

// Variable is a GTM workspace variable.
type Variable struct {
	Path        string      `json:"path,omitempty"`
	AccountID   string      `json:"accountId"`
	ContainerID string      `json:"containerId"`
	WorkspaceID string      `json:"workspaceId"`
	VariableID  string      `json:"variableId,omitempty"`
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Parameter   []Parameter `json:"parameter,omitempty"`
	Notes       string      `json:"notes,omitempty"`
}

// Validate checks the shape required for variable mutations.
func (v Variable) Validate() error {
	if v.AccountID == "" || v.ContainerID == "" || v.WorkspaceID == "" {
		return errors.Join(ErrInvalidForm, errors.New("accountId, containerId and workspaceId are required"))
	}
	if v.Name == "" || v.Type == "" {
		return errors.Join(ErrInvalidForm, errors.New("name and type are required"))
	}
	return nil
}

// ---- Analytics Admin (GA4) resources ----

// Property is a GA4 property.
type Property struct {
	Name             string `json:"name,omitempty"` // "properties/123"
	Parent           string `json:"parent,omitempty"`
	DisplayName      string `json:"displayName"`
	TimeZone         string `json:"timeZone,omitempty"`
	CurrencyCode     string `json:"currencyCode,omitempty"`
	IndustryCategory string `json:"industryCategory,omitempty"`
}

// Validate checks the shape required for property mutations.
func (p Property) Validate() error {
	if p.DisplayName == "" {
		return errors.Join(ErrInvalidForm, errors.New("displayName is required"))
	}
	if p.Name == "" && p.Parent == "" {
		return errors.Join(ErrInvalidForm, errors.New("parent is required for new properties"))
	}
	return nil
}

// WebStreamData carries the web-specific fields of a data stream.
type WebStreamData struct {
	DefaultURI    string `json:"defaultUri,omitempty"`
	MeasurementID string `json:"measurementId,omitempty"`
}

// DataStream is a GA4 data stream.
type DataStream struct {
	Name          string         `json:"name,omitempty"` // "properties/123/dataStreams/456"
	Property      string         `json:"property,omitempty"`
	DisplayName   string         `json:"displayName"`
	Type          string         `json:"type"` // WEB_DATA_STREAM, ANDROID_APP_DATA_STREAM, IOS_APP_DATA_STREAM
	WebStreamData *WebStreamData `json:"webStreamData,omitempty"`
}

// Validate checks the shape required for stream mutations.
func (d DataStream) Validate() error {
	if d.DisplayName == "" || d.Type == "" {
		return errors.Join(ErrInvalidForm, errors.New("displayName and type are required"))
	}
	if d.Name == "" && d.Property == "" {
		return errors.Join(ErrInvalidForm, errors.New("property is required for new streams"))
	}
	return nil
}

// CustomDimension is a GA4 custom dimension. GA4 archives dimensions
// instead of deleting them.
type CustomDimension struct {
	Name          string `json:"name,omitempty"` // "properties/123/customDimensions/456"
	Property      string `json:"property,omitempty"`
	ParameterName string `json:"parameterName"`
	DisplayName   string `json:"displayName"`
	Scope         string `json:"scope"` // EVENT or USER
	Description   string `json:"description,omitempty"`
}

// Validate checks the shape required for custom dimension mutations.
func (d CustomDimension) Validate() error {
	if d.DisplayName == "" || d.Scope == "" {
		return errors.Join(ErrInvalidForm, errors.New("displayName and scope are required"))
	}
	if d.Name == "" && (d.Property == "" || d.ParameterName == "") {
		return errors.Join(ErrInvalidForm, errors.New("property and parameterName are required for new dimensions"))
	}
	return nil
}

// CustomMetric is a GA4 custom metric, archived rather than deleted.
type CustomMetric struct {
	Name            string `json:"name,omitempty"`
	Property        string `json:"property,omitempty"`
	ParameterName   string `json:"parameterName"`
	DisplayName     string `json:"displayName"`
	MeasurementUnit string `json:"measurementUnit"`
	Scope           string `json:"scope"`
	Description     string `json:"description,omitempty"`
}

// Validate checks the shape required for custom metric mutations.
func (m CustomMetric) Validate() error {
	if m.DisplayName == "" || m.Scope == "" || m.MeasurementUnit == "" {
		return errors.Join(ErrInvalidForm, errors.New("displayName, scope and measurementUnit are required"))
	}
	if m.Name == "" && (m.Property == "" || m.ParameterName == "") {
		return errors.Join(ErrInvalidForm, errors.New("property and parameterName are required for new metrics"))
	}
	return nil
}

// AccessBinding grants roles on a property to a user.
type AccessBinding struct {
	Name     string   `json:"name,omitempty"` // "properties/123/accessBindings/456"
	Property string   `json:"property,omitempty"`
	User     string   `json:"user,omitempty"`
	Roles    []string `json:"roles"`
}

// Validate checks the shape required for access binding mutations.
func (b AccessBinding) Validate() error {
	if len(b.Roles) == 0 {
		return errors.Join(ErrInvalidForm, errors.New("at least one role is required"))
	}
	if b.Name == "" && (b.Property == "" || b.User == "") {
		return errors.Join(ErrInvalidForm, errors.New("property and user are required for new bindings"))
	}
	return nil
}
