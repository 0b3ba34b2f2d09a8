// Package domain models meteor impacts and the records that surround them.
//
// # Impact Estimation
//
// The impactor is treated as a homogeneous sphere. Given a radius in
// kilometers, an entry velocity in kilometers per second and a bulk density in
// kg/m³, [Estimate] derives:
//
//	volume_m3          = 4/3 · π · (radius_km · 1000)³
//	mass_kg            = density · volume_m3
//	energy_joules      = ½ · mass_kg · (velocity_km_s · 1000)²
//	energy_mt          = energy_joules / 4.184e15
//	affected_radius_km = 0.01 · energy_mt^0.33 · 1000
//
// The affected-radius law is a coarse empirical placeholder and not a
// validated crater or blast model. Its constants are kept as-is so results
// stay comparable with earlier releases.
//
// Density defaults to 3000 kg/m³ (a rocky body, see [DefaultDensityKgPerM3]).
// Callers override it per request; it is never read from package state.
//
// Severity classification:
//
//	energy_mt < 1          Low
//	1   <= energy_mt < 10  Moderate
//	10  <= energy_mt < 100 High
//	energy_mt >= 100       Catastrophic
//
// Each threshold belongs to the tier above it, so exactly 1 Mt is Moderate.
//
// # Impact Sites
//
// [ImpactSite] is a named coordinate kept for display. It shares a radius
// field with estimates by convention only and has no further link to them.
//
// # Data Feeds
//
// [AsteroidFeed] and [ElevationSource] describe the two read-only upstream
// feeds (NASA NeoWs and USGS EPQS). Nothing in the estimator depends on them.
package domain
