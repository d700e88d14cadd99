// Package axes synchronizes ERP analytic values (projects, plates,
// subposts) with the platform's custom axes, per company. The projects
// axis has a fixed identifier; plates and subposts are resolved from the
// company's custom axis list by French display name.
package axes
