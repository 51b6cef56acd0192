package devops

import (
	"errors"
	"io"
	"net/url"
	"path"

	"github.com/CanopySec/pipegrant/pkg/httpclient"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
)

// https://learn.microsoft.com/en-us/rest/api/azure/devops/pipelines/pipelines/list?view=azure-devops-rest-7.1
// Paged via the x-ms-continuationtoken response header.
func ListPipelines(baseURL string, organization string, project string, token string, continuationToken string) ([]PipelineReference, string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, "", err
	}

	client := httpclient.GetPipegrantHTTPClient(map[string]string{
		"Accept":                "application/json",
		"X-TFS-FedAuthRedirect": "Suppress",
	})

	u.Path = path.Join(u.Path, organization, project, "_apis", "pipelines")
	query := u.Query()
	query.Set("api-version", "7.1-preview.1")
	query.Set("$top", "100")
	if continuationToken != "" {
		query.Set("continuationToken", continuationToken)
	}
	u.RawQuery = query.Encode()

	req, err := retryablehttp.NewRequest("GET", u.String(), nil)
	if err != nil {
		return nil, "", err
	}
	req.SetBasicAuth("PAT", token)

	res, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer func() {
		_ = res.Body.Close()
	}()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, "", err
	}

	if res.StatusCode != 200 {
		return nil, "", errors.New("unable to list pipelines, status " + res.Status)
	}

	pipelines := []PipelineReference{}
	gjson.GetBytes(body, "value").ForEach(func(key, value gjson.Result) bool {
		pipelines = append(pipelines, PipelineReference{
			ID:       int(value.Get("id").Int()),
			Name:     value.Get("name").String(),
			Folder:   value.Get("folder").String(),
			Revision: int(value.Get("revision").Int()),
			URL:      value.Get("url").String(),
		})
		return true
	})

	return pipelines, res.Header.Get("x-ms-continuationtoken"), nil
}
