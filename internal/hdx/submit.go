package hdx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"codsync/internal/assemble"
)

// CreateOrUpdate persists an accepted submission: if a dataset with the
// same name already exists it is updated, otherwise it is created. The
// batch token rides along so the platform groups one run's updates from
// the same organization.
func (c *Client) CreateOrUpdate(ctx context.Context, sub *assemble.Submission, batchToken string) error {
	payload, err := submissionPayload(sub, batchToken)
	if err != nil {
		return fmt.Errorf("dataset %s: %w", sub.Name, err)
	}

	exists, err := c.datasetExists(ctx, sub.Name)
	if err != nil {
		return fmt.Errorf("dataset %s: %w", sub.Name, err)
	}

	action := "package_create"
	if exists {
		action = "package_update"
	}
	if _, err := c.call(ctx, http.MethodPost, action, nil, payload); err != nil {
		return fmt.Errorf("dataset %s: %s: %w", sub.Name, action, err)
	}
	return nil
}

// datasetExists probes package_show by name. A 404 means the dataset is
// new; anything else non-success is a real failure.
func (c *Client) datasetExists(ctx context.Context, name string) (bool, error) {
	query := url.Values{"id": {name}}
	_, err := c.call(ctx, http.MethodGet, "package_show", query, nil)
	if err == nil {
		return true, nil
	}
	if httpErr, ok := err.(*HTTPError); ok && httpErr.StatusCode == http.StatusNotFound {
		return false, nil
	}
	return false, err
}

// submissionPayload flattens the submission to a generic map, coerces the
// fields whose platform shape differs from the internal one, and attaches
// the batch token. The action API wants groups and tags as name-object
// lists and subnational as a "1"/"0" string.
func submissionPayload(sub *assemble.Submission, batchToken string) (map[string]interface{}, error) {
	jsonData, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("marshal submission: %w", err)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(jsonData, &payload); err != nil {
		return nil, fmt.Errorf("flatten submission: %w", err)
	}

	payload["groups"] = nameObjects(sub.Locations)
	payload["tags"] = nameObjects(sub.Tags)
	if sub.Subnational {
		payload["subnational"] = "1"
	} else {
		payload["subnational"] = "0"
	}

	if batchToken != "" {
		payload["batch"] = batchToken
	}
	return payload, nil
}

// nameObjects wraps plain names in the {"name": ...} records the action
// API expects for groups and tags.
func nameObjects(names []string) []map[string]string {
	objs := make([]map[string]string, 0, len(names))
	for _, n := range names {
		objs = append(objs, map[string]string{"name": n})
	}
	return objs
}
