// Package world defines the simulator's entity model: worlds, areas,
// characters, items, writing styles, triggers, and the events kernel
// mutations emit. Types here are persistence-agnostic; invariants that can
// be expressed as pure functions (percentage clamping, forced sleep, memory
// caps) live here so every caller shares one implementation.
package world
