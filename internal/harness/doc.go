// Package harness runs catalog sessions described in YAML and checks their
// outcomes.
//
// A scenario seeds a fresh catalog, drives the combination engine through a
// list of steps and evaluates assertions over the resulting trace and
// document. Every run uses a temporary data file, a scripted or seeded random
// source and a stepping clock, so the same scenario always produces the same
// trace and can be compared against a golden file.
//
// # Scenario Format
//
//	name: duplicate_is_rejected
//	description: "Swapping the ingredients of a recorded combination fails"
//	rand: [0]
//	ingredients:
//	  - name: Sauge
//	    effect: Purification
//	    type: positive
//	    quality: Minor
//	    duration: Instant
//	flow:
//	  - invoke: create
//	    args: { base: eau, ingredient1: sauge, ingredient2: ortie }
//	    expect:
//	      case: Success
//	      result: { name: "Potion Minor de Purification et Entanglement" }
//	  - invoke: create
//	    args: { base: eau, ingredient1: ortie, ingredient2: sauge }
//	    expect:
//	      case: Error
//	      code: DUPLICATE_COMBINATION
//	assertions:
//	  - type: potion_count
//	    count: 1
//
// # Actions
//
//   - create, preview: base, ingredient1, ingredient2
//   - delete, favorite: id
//   - notes: id, text
//   - suggest: no args
//   - add_ingredient: name, effect, type, quality, duration, optional previous_id
//   - delete_ingredient: id
//   - check, stats: no args
//
// # Assertion Types
//
//   - trace_contains: an action appears in the trace with matching args
//   - trace_order: actions appear in the given order
//   - trace_count: an action appears exactly count times
//   - potion_count: the catalog holds count potions
//   - favorite_count: count potions are favorites
//   - potion_exists: a potion matches every field in where
//   - integrity_clean: CheckIntegrity reports nothing
package harness
