// Package ui implements an interactive catalog search browser using bubbletea's Elm architecture.
//
// Views:
//  1. [SearchView] : enter a search term
//  2. [ResultsView] : browse every result type, filterable with /
//  3. [DetailView] : inspect one resource
//
// Searches run as [tea.Cmd]s through a [services.Searcher] and report back with the Msg union type, so the
// model never blocks on the network.
package ui
