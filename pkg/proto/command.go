/*
 * Copyright (c) 2022, Gideon Williams gideon@gideonw.com
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package proto

var (
	// CommandVersion announces the client version and returns the server's
	CommandVersion = "VERSION"
	// CommandValidate validates a query document
	CommandValidate = "VALIDATE"
	// CommandFields lists the fields visible to a user
	CommandFields = "FIELDS"
	// CommandFunctions lists the registered functions
	CommandFunctions = "FUNCTIONS"
	// CommandError
	CommandError = "ERROR"
	// CommandOk
	CommandOk = "OK"
)
