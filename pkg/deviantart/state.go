package deviantart

import (
	"encoding/json"
	"fmt"
)

// PageState is the decoded __INITIAL_STATE__ document for one page.
// Which sections are present depends on the page type: a login page has
// neither entities nor streams, a deviation page has both, a folder page
// has a gallection section and a named stream. It is constructed once
// per response and never mutated afterwards, except through
// TakeDeviationByID which transfers ownership of a single deviation out
// of the entity map.
type PageState struct {
	// Config holds page config such as the csrf token.
	Config Config `json:"@@config"`

	// Entities holds the string-keyed entity maps.
	Entities *Entities `json:"@@entities,omitempty"`

	// DuperBrowse tracks the currently open item.
	DuperBrowse *DuperBrowse `json:"@@DUPERBROWSE,omitempty"`

	// PublicSession describes the current session.
	PublicSession PublicSession `json:"@@publicSession"`

	// Streams holds the named stream objects.
	Streams *Streams `json:"@@streams,omitempty"`

	// Login pages carry their flow tokens at the top level.
	CSRFToken string `json:"csrfToken,omitempty"`
	LuToken   string `json:"luToken,omitempty"`
	LuToken2  string `json:"luToken2,omitempty"`

	// Gallection is the folder browsing context on gallery pages.
	Gallection *GallectionSection `json:"gallectionSection,omitempty"`

	// Extra holds top level keys this package does not model.
	Extra map[string]json.RawMessage `json:"-"`
}

func (p *PageState) UnmarshalJSON(data []byte) error {
	type pageState PageState
	var aux pageState
	extra, err := decodeWithExtra(data, &aux)
	if err != nil {
		return err
	}
	aux.Extra = extra
	*p = PageState(aux)
	return nil
}

// IsLoggedIn reports whether the page was served to a signed-in session.
func (p *PageState) IsLoggedIn() bool {
	return p.PublicSession.IsLoggedIn
}

// CurrentDeviationID returns the id of the currently open deviation, or
// nil when the page has none.
func (p *PageState) CurrentDeviationID() *ItemID {
	if p.DuperBrowse == nil || p.DuperBrowse.RootStream == nil {
		return nil
	}
	return p.DuperBrowse.RootStream.CurrentOpenItem
}

// CurrentDeviation returns the deviation the page is open on, or nil.
func (p *PageState) CurrentDeviation() *Deviation {
	id := p.CurrentDeviationID()
	if id == nil || p.Entities == nil {
		return nil
	}
	return p.Entities.Deviation[id.Key()]
}

// CurrentDeviationExtended returns the extended record for the deviation
// the page is open on, or nil.
func (p *PageState) CurrentDeviationExtended() *DeviationExtended {
	id := p.CurrentDeviationID()
	if id == nil || p.Entities == nil || p.Entities.DeviationExtended == nil {
		return nil
	}
	return p.Entities.DeviationExtended[id.Key()]
}

// DeviationByID looks up a deviation by id, or nil if absent. Absence is
// not an error here: the same nil can mean "wrong page type" or "field
// intentionally absent", and only the caller knows which.
func (p *PageState) DeviationByID(id uint64) *Deviation {
	if p.Entities == nil {
		return nil
	}
	return p.Entities.Deviation[entityKey(id)]
}

// TakeDeviationByID removes a deviation from the entity map and returns
// it, transferring ownership to the caller. Other entities are left
// untouched.
func (p *PageState) TakeDeviationByID(id uint64) *Deviation {
	if p.Entities == nil {
		return nil
	}
	key := entityKey(id)
	deviation := p.Entities.Deviation[key]
	if deviation != nil {
		delete(p.Entities.Deviation, key)
	}
	return deviation
}

// DeviationExtendedByID looks up the extended record for an id, or nil.
func (p *PageState) DeviationExtendedByID(id uint64) *DeviationExtended {
	if p.Entities == nil || p.Entities.DeviationExtended == nil {
		return nil
	}
	return p.Entities.DeviationExtended[entityKey(id)]
}

// FolderID returns the id of the folder the page is browsing.
func (p *PageState) FolderID() (uint64, bool) {
	if p.Gallection == nil || p.Gallection.FolderID == nil {
		return 0, false
	}
	return p.Gallection.FolderID.Uint64()
}

// FolderByID looks up a gallery folder entity by id, or nil.
func (p *PageState) FolderByID(id uint64) *GalleryFolder {
	if p.Entities == nil || p.Entities.GalleryFolder == nil {
		return nil
	}
	return p.Entities.GalleryFolder[entityKey(id)]
}

// UserByID looks up a user entity by id, or nil.
func (p *PageState) UserByID(id uint64) *User {
	if p.Entities == nil || p.Entities.User == nil {
		return nil
	}
	return p.Entities.User[entityKey(id)]
}

// FolderStream resolves the offset-paged deviation stream for a folder.
// The stream lives in the generic stream map under a synthetic key; any
// other stream variant at that key is treated as absent.
func (p *PageState) FolderStream(folderID uint64) *WithOffsetStream {
	if p.Streams == nil {
		return nil
	}
	return p.Streams.WithOffset(folderStreamKey(folderID))
}

// folderStreamKey builds the synthetic stream map key for a folder's
// deviation listing.
func folderStreamKey(folderID uint64) string {
	return fmt.Sprintf("folder-deviations-gallery-%d", folderID)
}

// loginCSRFToken picks the csrf token a login form should echo back.
// Newer login pages carry it at the top level, older ones only inside
// the config section.
func (p *PageState) loginCSRFToken() string {
	if p.CSRFToken != "" {
		return p.CSRFToken
	}
	return p.Config.CSRFToken
}

// Config is the page config section.
type Config struct {
	CSRFToken string `json:"csrfToken"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (c *Config) UnmarshalJSON(data []byte) error {
	type config Config
	var aux config
	extra, err := decodeWithExtra(data, &aux)
	if err != nil {
		return err
	}
	aux.Extra = extra
	*c = Config(aux)
	return nil
}

// PublicSession describes the session the page was rendered for.
type PublicSession struct {
	IsLoggedIn bool `json:"isLoggedIn"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (s *PublicSession) UnmarshalJSON(data []byte) error {
	type publicSession PublicSession
	var aux publicSession
	extra, err := decodeWithExtra(data, &aux)
	if err != nil {
		return err
	}
	aux.Extra = extra
	*s = PublicSession(aux)
	return nil
}

// Entities holds the string-keyed entity maps. Keys are the decimal form
// of the numeric entity ids.
type Entities struct {
	Deviation         map[string]*Deviation         `json:"deviation"`
	DeviationExtended map[string]*DeviationExtended `json:"deviationExtended,omitempty"`
	GalleryFolder     map[string]*GalleryFolder     `json:"galleryFolder,omitempty"`
	User              map[string]*User              `json:"user,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (e *Entities) UnmarshalJSON(data []byte) error {
	type entities Entities
	var aux entities
	extra, err := decodeWithExtra(data, &aux)
	if err != nil {
		return err
	}
	aux.Extra = extra
	*e = Entities(aux)
	return nil
}

// DuperBrowse wraps the root stream that tracks the open item.
type DuperBrowse struct {
	RootStream *RootStream `json:"rootStream,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (d *DuperBrowse) UnmarshalJSON(data []byte) error {
	type duperBrowse DuperBrowse
	var aux duperBrowse
	extra, err := decodeWithExtra(data, &aux)
	if err != nil {
		return err
	}
	aux.Extra = extra
	*d = DuperBrowse(aux)
	return nil
}

// RootStream carries the currently open item id, which the site emits as
// either a number or a string.
type RootStream struct {
	CurrentOpenItem *ItemID `json:"currentOpenItem,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (r *RootStream) UnmarshalJSON(data []byte) error {
	type rootStream RootStream
	var aux rootStream
	extra, err := decodeWithExtra(data, &aux)
	if err != nil {
		return err
	}
	aux.Extra = extra
	*r = RootStream(aux)
	return nil
}

// GallectionSection is the folder browsing context on gallery pages.
type GallectionSection struct {
	FolderID *ItemID `json:"folderId,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (g *GallectionSection) UnmarshalJSON(data []byte) error {
	type gallectionSection GallectionSection
	var aux gallectionSection
	extra, err := decodeWithExtra(data, &aux)
	if err != nil {
		return err
	}
	aux.Extra = extra
	*g = GallectionSection(aux)
	return nil
}

// GalleryFolder is the minimal folder record: identity, display name and
// the owning user's id.
type GalleryFolder struct {
	FolderID uint64  `json:"folderId"`
	Name     string  `json:"name"`
	Owner    *ItemID `json:"owner,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (f *GalleryFolder) UnmarshalJSON(data []byte) error {
	type galleryFolder GalleryFolder
	var aux galleryFolder
	extra, err := decodeWithExtra(data, &aux)
	if err != nil {
		return err
	}
	aux.Extra = extra
	*f = GalleryFolder(aux)
	return nil
}

// User is the minimal user record used to resolve a folder's owner.
type User struct {
	UserID   uint64 `json:"userId"`
	Username string `json:"username"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (u *User) UnmarshalJSON(data []byte) error {
	type user User
	var aux user
	extra, err := decodeWithExtra(data, &aux)
	if err != nil {
		return err
	}
	aux.Extra = extra
	*u = User(aux)
	return nil
}
