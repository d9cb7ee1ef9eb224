// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the CRM record types exchanged with the remote
// backend: users, leads, clients, projects, and the reports overview
// snapshot. Field tags follow the backend's wire format (Mongo-style
// "_id" identifiers, embedded staff summaries on reads, bare identifier
// strings on writes).
package model
