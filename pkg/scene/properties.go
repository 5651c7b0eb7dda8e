package scene

// PropertyRecord holds the display attributes of one building. The
// table is keyed by the internal footprint BuildingID, not by OSM ID;
// joining geometry to properties goes through the Resolver.
type PropertyRecord struct {
	BuildingID   BuildingID `json:"building_id"`
	OSMID        OSMID      `json:"osm_id"`
	Name         string     `json:"name,omitempty"`
	BuildingType string     `json:"building_type,omitempty"`
	Height       float64    `json:"height,omitempty"`
	HeightSource string     `json:"height_source,omitempty"`
	AddrStreet   string     `json:"addr_street,omitempty"`
	AddrNumber   string     `json:"addr_housenumber,omitempty"`
	AddrCity     string     `json:"addr_city,omitempty"`
	AddrPostcode string     `json:"addr_postcode,omitempty"`
	Amenity      string     `json:"amenity,omitempty"`
	Shop         string     `json:"shop,omitempty"`
}

// PropertyPatch is a partial update of a PropertyRecord. Nil fields
// are left untouched when the patch is applied; this is how backend
// overrides merge into the local cache without clobbering fields the
// response did not mention.
type PropertyPatch struct {
	Name         *string  `json:"name,omitempty"`
	BuildingType *string  `json:"building_type,omitempty"`
	Height       *float64 `json:"height,omitempty"`
	HeightSource *string  `json:"height_source,omitempty"`
	AddrStreet   *string  `json:"addr_street,omitempty"`
	AddrNumber   *string  `json:"addr_housenumber,omitempty"`
	AddrCity     *string  `json:"addr_city,omitempty"`
	AddrPostcode *string  `json:"addr_postcode,omitempty"`
}

// PropertyTable is the building metadata cache, loaded independently of
// the face map.
type PropertyTable struct {
	records map[BuildingID]*PropertyRecord
}

// NewPropertyTable creates an empty table
func NewPropertyTable() *PropertyTable {
	return &PropertyTable{records: make(map[BuildingID]*PropertyRecord)}
}

// Put inserts or replaces a record
func (t *PropertyTable) Put(rec *PropertyRecord) {
	t.records[rec.BuildingID] = rec
}

// Get looks up a record by its footprint building ID
func (t *PropertyTable) Get(id BuildingID) (*PropertyRecord, bool) {
	rec, ok := t.records[id]
	return rec, ok
}

// Len returns the number of records
func (t *PropertyTable) Len() int {
	return len(t.records)
}

// FindByOSMID scans for the record joined to the given OSM ID. Linear,
// invoked on click and during substitution, never per frame.
func (t *PropertyTable) FindByOSMID(id OSMID) (*PropertyRecord, bool) {
	for _, rec := range t.records {
		if rec.OSMID == id {
			return rec, true
		}
	}
	return nil, false
}

// ApplyPatch merges a partial update into the record for the given OSM
// ID. Missing record is a no-op and reported via the return value.
func (t *PropertyTable) ApplyPatch(id OSMID, patch PropertyPatch) bool {
	rec, ok := t.FindByOSMID(id)
	if !ok {
		return false
	}
	if patch.Name != nil {
		rec.Name = *patch.Name
	}
	if patch.BuildingType != nil {
		rec.BuildingType = *patch.BuildingType
	}
	if patch.Height != nil {
		rec.Height = *patch.Height
	}
	if patch.HeightSource != nil {
		rec.HeightSource = *patch.HeightSource
	}
	if patch.AddrStreet != nil {
		rec.AddrStreet = *patch.AddrStreet
	}
	if patch.AddrNumber != nil {
		rec.AddrNumber = *patch.AddrNumber
	}
	if patch.AddrCity != nil {
		rec.AddrCity = *patch.AddrCity
	}
	if patch.AddrPostcode != nil {
		rec.AddrPostcode = *patch.AddrPostcode
	}
	return true
}
