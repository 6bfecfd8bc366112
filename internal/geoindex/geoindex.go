// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

// Package geoindex provides a spatial hash index over geographic entities.
//
// The index divides the globe into fixed-resolution cells keyed by
// quantized (latitude, longitude) bands. Radius queries first compute a
// conservative bounding-box cover of candidate cells, then apply a fine
// great-circle (haversine) filter per entity to eliminate the false
// positives the coarse cover admits. This two-phase filter trades a small
// amount of per-query work for an index that stays O(entities) in memory
// and answers proximity queries in O(nearby entries) instead of O(n).
//
// Cell resolution is a tunable constant: coarser cells shrink the index
// but push more entries through the fine filter; finer cells do the
// opposite.
package geoindex

import (
	"math"
	"sort"
	"sync"
	"time"
)

// kmPerDegree approximates one degree of latitude (and of longitude at
// the equator) in kilometers.
const kmPerDegree = 111.0

// CellKey identifies one spatial cell by its quantized coordinate bands.
type CellKey struct {
	X, Y int
}

// entry is one indexed entity. The cell key is cached for O(1) removal.
type entry struct {
	id        string
	lat       float64
	lon       float64
	timestamp time.Time
	cellKey   CellKey
}

// Neighbor is an index entry returned from a radius query, annotated with
// its true great-circle distance from the query center.
type Neighbor struct {
	ID         string
	Latitude   float64
	Longitude  float64
	Timestamp  time.Time
	DistanceKm float64
}

// Index is a thread-safe spatial hash index. Reads run fully in parallel;
// structural updates (insert, remove, rebuild) take exclusive access, so
// readers observe either the pre- or post-update index, never an
// intermediate state.
type Index struct {
	mu          sync.RWMutex
	cells       map[CellKey][]*entry
	entries     map[string]*entry
	cellSizeDeg float64
}

// New creates a spatial index with the given approximate cell edge length
// in kilometers. Non-positive sizes fall back to 10km.
func New(cellSizeKm float64) *Index {
	if cellSizeKm <= 0 {
		cellSizeKm = 10
	}
	return &Index{
		cells:       make(map[CellKey][]*entry),
		entries:     make(map[string]*entry),
		cellSizeDeg: cellSizeKm / kmPerDegree,
	}
}

// cellKeyFor returns the cell containing a coordinate. Longitude is
// normalized to [-180, 180] first so wrapped inputs land in the same cell.
func (ix *Index) cellKeyFor(lat, lon float64) CellKey {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return CellKey{
		X: int(math.Floor(lon / ix.cellSizeDeg)),
		Y: int(math.Floor(lat / ix.cellSizeDeg)),
	}
}

// Insert adds an entity to the index, replacing any previous entry with
// the same ID. An entity therefore occupies exactly one cell per
// resolution at any instant.
func (ix *Index) Insert(id string, lat, lon float64, timestamp time.Time) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if existing, ok := ix.entries[id]; ok {
		ix.removeFromCellLocked(existing)
	}

	key := ix.cellKeyFor(lat, lon)
	e := &entry{id: id, lat: lat, lon: lon, timestamp: timestamp, cellKey: key}
	ix.cells[key] = append(ix.cells[key], e)
	ix.entries[id] = e
}

// Remove deletes an entity by ID, reporting whether it was present.
func (ix *Index) Remove(id string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	e, ok := ix.entries[id]
	if !ok {
		return false
	}
	ix.removeFromCellLocked(e)
	delete(ix.entries, id)
	return true
}

// removeFromCellLocked removes an entry from its cell (caller holds mu).
func (ix *Index) removeFromCellLocked(e *entry) {
	cell, ok := ix.cells[e.cellKey]
	if !ok {
		return
	}
	for i, candidate := range cell {
		if candidate.id == e.id {
			cell[i] = cell[len(cell)-1]
			cell = cell[:len(cell)-1]
			break
		}
	}
	if len(cell) == 0 {
		delete(ix.cells, e.cellKey)
	} else {
		ix.cells[e.cellKey] = cell
	}
}

// CellsWithinRadius computes the conservative bounding-box cover of cells
// whose extent may intersect the query circle. Cells outside the cover
// provably cannot contain matches; cells inside it still require the fine
// haversine filter.
func (ix *Index) CellsWithinRadius(lat, lon, radiusKm float64) []CellKey {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.cellCoverLocked(lat, lon, radiusKm)
}

// cellCoverLocked returns candidate cell keys (caller holds mu at least
// for reading). Only non-empty cells are returned.
//
// A longitude degree spans kmPerDegree only at the equator and shrinks
// by cos(latitude) toward the poles, so the east-west span must widen by
// 1/cos(lat) to stay conservative. The cosine is clamped so queries near
// the poles degrade to a wide cover instead of dividing by zero.
func (ix *Index) cellCoverLocked(lat, lon, radiusKm float64) []CellKey {
	spanY := int(math.Ceil(radiusKm/kmPerDegree/ix.cellSizeDeg)) + 1
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	spanX := int(math.Ceil(radiusKm/(kmPerDegree*cosLat)/ix.cellSizeDeg)) + 1
	center := ix.cellKeyFor(lat, lon)

	var keys []CellKey
	for dx := -spanX; dx <= spanX; dx++ {
		for dy := -spanY; dy <= spanY; dy++ {
			key := CellKey{X: center.X + dx, Y: center.Y + dy}
			if _, ok := ix.cells[key]; ok {
				keys = append(keys, key)
			}
		}
	}
	return keys
}

// Nearby returns all entities within radiusKm of the center, ordered by
// ascending great-circle distance with ties broken by entity ID. A radius
// of zero matches only entities at the exact center point.
func (ix *Index) Nearby(lat, lon, radiusKm float64) []Neighbor {
	return ix.NearbySince(lat, lon, radiusKm, time.Time{})
}

// NearbySince is Nearby restricted to entities whose timestamp is not
// before since. A zero since disables the temporal filter.
func (ix *Index) NearbySince(lat, lon, radiusKm float64, since time.Time) []Neighbor {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if radiusKm < 0 {
		return nil
	}

	var results []Neighbor
	for _, key := range ix.cellCoverLocked(lat, lon, radiusKm) {
		for _, e := range ix.cells[key] {
			if !since.IsZero() && e.timestamp.Before(since) {
				continue
			}
			dist := HaversineKm(lat, lon, e.lat, e.lon)
			if dist <= radiusKm {
				results = append(results, Neighbor{
					ID:         e.id,
					Latitude:   e.lat,
					Longitude:  e.lon,
					Timestamp:  e.timestamp,
					DistanceKm: dist,
				})
			}
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].DistanceKm != results[j].DistanceKm {
			return results[i].DistanceKm < results[j].DistanceKm
		}
		return results[i].ID < results[j].ID
	})
	return results
}

// Size returns the total number of indexed entities.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// NumCells returns the number of non-empty cells.
func (ix *Index) NumCells() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.cells)
}

// Rebuild re-buckets every entity at a new cell resolution. The rebuild
// holds exclusive access for its duration, so concurrent readers see the
// old cells or the new ones, never a mix.
func (ix *Index) Rebuild(cellSizeKm float64) {
	if cellSizeKm <= 0 {
		return
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.cellSizeDeg = cellSizeKm / kmPerDegree
	ix.cells = make(map[CellKey][]*entry, len(ix.cells))
	for _, e := range ix.entries {
		key := ix.cellKeyFor(e.lat, e.lon)
		e.cellKey = key
		ix.cells[key] = append(ix.cells[key], e)
	}
}

// Clear removes all entities.
func (ix *Index) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.cells = make(map[CellKey][]*entry)
	ix.entries = make(map[string]*entry)
}

// HaversineKm computes the great-circle distance between two points in
// kilometers using the haversine formula.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}
