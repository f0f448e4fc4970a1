// Package sitetests contains the smoke-test steps for the site under test and their supporting API.
//
// Runner infrastructure that is not specific to the site, such as failure isolation, evidence
// captures, and reporting, is in the lower-level framework package.
package sitetests
