// Package domain holds the aviation rules used to turn raw airport feeds
// into classified facts: flight phase, airspace membership, NOTAM lifecycle
// state, and flight category with weather risk.
//
// Every exported rule is a deterministic function of its arguments. Rules
// that depend on the current time come in two forms, an ...At(now) form and
// a convenience form reading the package clock (see [SetClock]).
//
// # Geometry
//
// Distances use a planar approximation: one degree of latitude is 60 NM and
// longitude is scaled by cos(latitude). This is good to a few percent within
// a few hundred NM of the reference point, which covers one airport's
// surroundings. Polygons are closed implicitly and tested with the even-odd
// crossing rule; boundary points are not guaranteed either way.
//
// # Flight phase
//
// Rules are evaluated in order and the first match wins:
//
//	ground     on_ground, or alt < 100ft and gs < 30kt
//	takeoff    alt < 500ft, vs > +300fpm, gs > 60kt
//	landing    alt < 500ft, vs < -300fpm, gs > 60kt, within 5NM
//	departure  alt < 10000ft, vs > +200fpm, within 30NM
//	approach   alt < 10000ft, vs < -200fpm, within 30NM
//	cruise/climb/descent
//	           alt >= 10000ft or beyond 30NM, split on |vs| < 300fpm
//	enroute    anything else
//
// # NOTAM conventions
//
// Series action markers in the text: "NOTAMN" new, "NOTAMR" replaces the
// NOTAM named after it, "NOTAMC" cancels it, e.g. "A1081/24 NOTAMC A1045/24".
//
// The Q) line summarises the NOTAM:
//
//	Q) RKRR/QMRLC/IV/NBO/A/000/999/3536N12921E005
//	   FIR / Q-code / traffic / purpose / scope / lower / upper / centre+radius
//
// Lower and upper limits are flight levels (hundreds of feet). The centre is
// DDMM[NS]DDDMM[EW] and the radius is three digits in NM.
//
// Dates are YYMMDDHHMM in UTC. Item B) is the start of validity, item C) the
// end; "PERM" in C) means no planned end and "EST" marks an estimate, which
// is ignored.
//
// # Flight category
//
//	visibility (SM): >=5 VFR | >=3 MVFR | >=1 IFR | <1 LIFR
//	ceiling (ft):    >=3000 VFR | >=1000 MVFR | >=500 IFR | <500 LIFR
//
// The worse of the two wins. No ceiling means unlimited.
package domain
