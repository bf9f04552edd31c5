// Package transform provides graph transformations applied before layout.
//
// [AssignLayers] computes row assignments with a longest-path layering, and
// [RelativeRows] re-expresses them relative to an anchor node such as the
// tree root, which puts a parent reference at rank -1.
package transform
