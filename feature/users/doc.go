// Package users synchronizes ERP employees with platform users: payload
// mapping, source and target normalization, company code resolution and
// recursive manager chain creation.
package users
