package azdo

// apiVersion is the REST API version requested on every call.
const apiVersion = "7.1"

// resourceAreasAPIVersion is the version used for resource area lookups,
// which are still preview-only on the service.
const resourceAreasAPIVersion = "7.1-preview.1"

// workItemTrackingAreaID identifies the work item tracking resource area.
const workItemTrackingAreaID = "5264459e-e5e0-4bd8-b118-0985e68a4ec5"

// jsonPatchContentType is required by the work item update endpoint.
const jsonPatchContentType = "application/json-patch+json"

// ResourceArea is the response from GET _apis/resourceAreas/{areaId}.
type ResourceArea struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	LocationURL string `json:"locationUrl"`
}

// ErrorResponse is the standard Azure DevOps error body.
type ErrorResponse struct {
	ID        string `json:"$id"`
	Message   string `json:"message"`
	TypeName  string `json:"typeName"`
	TypeKey   string `json:"typeKey"`
	ErrorCode int    `json:"errorCode"`
	EventID   int    `json:"eventId"`
}
