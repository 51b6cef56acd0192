// Package devops is a minimal Azure DevOps REST API client covering the
// pipeline permissions surface.
package devops

import (
	"net/url"
	"path"

	"github.com/rs/zerolog/log"

	"resty.dev/v3"
)

// https://learn.microsoft.com/en-us/rest/api/azure/devops/approvalsandchecks/pipeline-permissions
type Client struct {
	BaseURL string
	Client  resty.Client
}

// NewClient creates a client for the Azure DevOps instance at baseURL
// (e.g. https://dev.azure.com). Azure DevOps accepts a personal access
// token as the password of basic auth; the username is ignored and "PAT"
// by convention.
func NewClient(token string, baseURL string) Client {
	adoClient := Client{
		BaseURL: baseURL,
		Client:  *resty.New().SetBasicAuth("PAT", token).SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)),
	}
	return adoClient
}

func (a Client) permissionsURL(organization string, project string, resourceType string, resourceID string) string {
	u, err := url.Parse(a.BaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("baseUrl", a.BaseURL).Msg("Unable to parse pipeline permissions url")
	}

	u.Path = path.Join(u.Path, organization, project, "_apis", "pipelines", "pipelinepermissions", resourceType, resourceID)
	return u.String()
}

// https://learn.microsoft.com/en-us/rest/api/azure/devops/approvalsandchecks/pipeline-permissions/get?view=azure-devops-rest-7.1
func (a Client) GetPipelinePermissions(organization string, project string, resourceType string, resourceID string, apiVersion string) (*ResourcePipelinePermissions, *resty.Response, error) {
	reqUrl := a.permissionsURL(organization, project, resourceType, resourceID)

	permissions := &ResourcePipelinePermissions{}
	res, err := a.Client.R().
		SetQueryParam("api-version", apiVersion).
		SetHeader("Accept", "application/json").
		SetHeader("X-TFS-FedAuthRedirect", "Suppress").
		SetResult(permissions).
		Get(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed fetching pipeline permissions (network or client error)")
	}

	if res != nil && res.StatusCode() > 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed fetching pipeline permissions (HTTP error)")
	}

	return permissions, res, err
}

// https://learn.microsoft.com/en-us/rest/api/azure/devops/approvalsandchecks/pipeline-permissions/update-pipeline-permisions-for-resource?view=azure-devops-rest-7.1
// The endpoint is fire-and-report: the caller inspects the response status,
// not the body.
func (a Client) UpdatePipelinePermissions(organization string, project string, resourceType string, resourceID string, apiVersion string, update PipelinePermissionUpdate) (*resty.Response, error) {
	reqUrl := a.permissionsURL(organization, project, resourceType, resourceID)

	res, err := a.Client.R().
		SetQueryParam("api-version", apiVersion).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("X-TFS-FedAuthRedirect", "Suppress").
		SetBody(update).
		Patch(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed updating pipeline permissions (network or client error)")
	}

	return res, err
}
