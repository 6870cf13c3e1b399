package deviantart

import (
	"context"
	"encoding/json"
)

// maxFolderFetches caps how many listing requests a single folder walk
// may issue. Runaway pagination on a misbehaving response would
// otherwise loop forever.
const maxFolderFetches = 128

// Folder is a gallery folder with the deviation ids it holds.
type Folder struct {
	// ID is the folder id.
	ID uint64

	// Name is the folder name, when the page carried it.
	Name string

	// Owner is the owning user's name, when resolvable.
	Owner string

	// DeviationIDs lists the folder's deviations in display order.
	DeviationIDs []uint64

	// HasMore reports whether the folder holds deviations beyond the
	// ones listed here.
	HasMore bool
}

// FolderContentsResponse is the decoded body of a folder listing
// request.
type FolderContentsResponse struct {
	HasMore    bool        `json:"hasMore"`
	NextOffset *int        `json:"nextOffset"`
	Results    []Deviation `json:"results"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (r *FolderContentsResponse) UnmarshalJSON(data []byte) error {
	type folderContentsResponse FolderContentsResponse
	var aux folderContentsResponse
	extra, err := decodeWithExtra(data, &aux)
	if err != nil {
		return err
	}
	aux.Extra = extra
	*r = FolderContentsResponse(aux)
	return nil
}

// ScrapeFolder fetches a gallery folder page and returns the folder
// with the ids present in its embedded stream. HasMore is set when the
// stream says the folder continues; use WalkFolder to follow it.
func (c *Client) ScrapeFolder(ctx context.Context, rawURL string) (*Folder, error) {
	page, err := c.ScrapePage(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return folderFromPage(page)
}

// folderFromPage builds a Folder from a scraped folder page.
func folderFromPage(page *PageState) (*Folder, error) {
	id, ok := page.FolderID()
	if !ok {
		return nil, &MissingFieldError{Name: "folderId"}
	}

	stream := page.FolderStream(id)
	if stream == nil {
		return nil, ErrMissingFolderStream
	}

	folder := &Folder{
		ID:      id,
		HasMore: stream.HasMore,
	}

	if entity := page.FolderByID(id); entity != nil {
		folder.Name = entity.Name
		if entity.Owner != nil {
			if ownerID, ok := entity.Owner.Uint64(); ok {
				if user := page.UserByID(ownerID); user != nil {
					folder.Owner = user.Username
				}
			}
		}
	}

	folder.DeviationIDs = make([]uint64, 0, len(stream.Items))
	for _, item := range stream.Items {
		if deviationID, ok := item.Uint64(); ok {
			folder.DeviationIDs = append(folder.DeviationIDs, deviationID)
		}
	}

	return folder, nil
}

// WalkFolder fetches a gallery folder page and follows its listing
// endpoint until the folder is exhausted, returning every deviation id.
// The walk stops with ErrFolderWalkTruncated if the endpoint keeps
// promising more pages past the fetch cap; the ids collected so far are
// returned alongside the error.
func (c *Client) WalkFolder(ctx context.Context, rawURL string) (*Folder, error) {
	page, err := c.ScrapePage(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	folder, err := folderFromPage(page)
	if err != nil {
		return nil, err
	}
	if !folder.HasMore {
		return folder, nil
	}

	if folder.Owner == "" {
		return folder, &MissingFieldError{Name: "owner"}
	}
	csrfToken := page.loginCSRFToken()
	if csrfToken == "" {
		return folder, &MissingFieldError{Name: "csrfToken"}
	}

	offset := len(folder.DeviationIDs)
	for fetches := 0; ; fetches++ {
		if fetches >= maxFolderFetches {
			folder.HasMore = true
			return folder, ErrFolderWalkTruncated
		}

		contents, err := c.ListFolderContents(ctx, folder.Owner, folder.ID, offset, csrfToken)
		if err != nil {
			return folder, err
		}

		for i := range contents.Results {
			folder.DeviationIDs = append(folder.DeviationIDs, contents.Results[i].DeviationID)
		}

		if !contents.HasMore {
			folder.HasMore = false
			return folder, nil
		}

		// A response that claims more results but does not advance the
		// offset would loop forever.
		next := offset + len(contents.Results)
		if contents.NextOffset != nil && *contents.NextOffset > offset {
			next = *contents.NextOffset
		}
		if next <= offset {
			folder.HasMore = true
			return folder, ErrFolderWalkTruncated
		}
		offset = next

		c.logger.DebugWithFields("fetched folder page", map[string]interface{}{
			"folder_id": folder.ID,
			"offset":    offset,
			"total":     len(folder.DeviationIDs),
		})
	}
}
