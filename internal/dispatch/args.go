package dispatch

import (
	"fmt"
	"net/url"
)

// Typed argument sets, one per tool shape. Each is produced by a single
// validation pass so the handlers below never re-check key presence.
type createCollectionArgs struct {
	Name string
}

type collectionIDArgs struct {
	CollectionID string
}

type addFileArgs struct {
	CollectionID string
	Name         string
	URL          string
}

type searchArgs struct {
	CollectionID string
	Query        string
}

// stringArg extracts a required string argument. The error text is the
// caller-facing validation message.
func stringArg(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", fmt.Errorf("missing required parameter: %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %q must be a string", key)
	}
	if s == "" {
		return "", fmt.Errorf("missing required parameter: %q", key)
	}
	return s, nil
}

func parseCreateCollectionArgs(raw map[string]interface{}) (createCollectionArgs, error) {
	name, err := stringArg(raw, "name")
	if err != nil {
		return createCollectionArgs{}, err
	}
	return createCollectionArgs{Name: name}, nil
}

func parseCollectionIDArgs(raw map[string]interface{}) (collectionIDArgs, error) {
	id, err := stringArg(raw, "collection_id")
	if err != nil {
		return collectionIDArgs{}, err
	}
	return collectionIDArgs{CollectionID: id}, nil
}

func parseAddFileArgs(raw map[string]interface{}) (addFileArgs, error) {
	id, err := stringArg(raw, "collection_id")
	if err != nil {
		return addFileArgs{}, err
	}
	name, err := stringArg(raw, "name")
	if err != nil {
		return addFileArgs{}, err
	}
	fileURL, err := stringArg(raw, "url")
	if err != nil {
		return addFileArgs{}, err
	}
	if err := validateURL(fileURL); err != nil {
		return addFileArgs{}, err
	}
	return addFileArgs{CollectionID: id, Name: name, URL: fileURL}, nil
}

func parseSearchArgs(raw map[string]interface{}) (searchArgs, error) {
	id, err := stringArg(raw, "collection_id")
	if err != nil {
		return searchArgs{}, err
	}
	query, err := stringArg(raw, "query")
	if err != nil {
		return searchArgs{}, err
	}
	return searchArgs{CollectionID: id, Query: query}, nil
}

// validateURL accepts only absolute URLs carrying both a scheme and a
// host. Relative and malformed values are rejected before any remote
// call.
func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid url: %q", raw)
	}
	return nil
}
