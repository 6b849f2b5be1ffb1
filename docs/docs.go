// Package docs registers the OpenAPI document served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/entrants": {
            "post": {
                "tags": [
                    "entrants"
                ],
                "summary": "Create an entrant",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "entrant",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/controllers.CreateEntrantRequest"
                        }
                    }
                ]
            }
        },
        "/entrants/{entrantID}": {
            "get": {
                "tags": [
                    "entrants"
                ],
                "summary": "Get an entrant",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "entrantID",
                        "type": "integer",
                        "required": true
                    }
                ]
            },
            "put": {
                "tags": [
                    "entrants"
                ],
                "summary": "Update an entrant's profile",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "entrantID",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "in": "body",
                        "name": "profile",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/controllers.UpdateEntrantRequest"
                        }
                    }
                ]
            },
            "delete": {
                "tags": [
                    "entrants"
                ],
                "summary": "Delete an entrant",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "entrantID",
                        "type": "integer",
                        "required": true
                    }
                ]
            }
        },
        "/entrants/device/{deviceID}": {
            "get": {
                "tags": [
                    "entrants"
                ],
                "summary": "Get an entrant by device id",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "deviceID",
                        "type": "string",
                        "required": true
                    }
                ]
            }
        },
        "/entrants/{entrantID}/sub-entrants": {
            "post": {
                "tags": [
                    "entrants"
                ],
                "summary": "Create a sub-entrant",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "entrantID",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "in": "body",
                        "name": "profile",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/controllers.UpdateEntrantRequest"
                        }
                    }
                ]
            }
        },
        "/entrants/{entrantID}/events": {
            "get": {
                "tags": [
                    "entrants"
                ],
                "summary": "List events for an entrant",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "entrantID",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "in": "query",
                        "name": "when",
                        "type": "string",
                        "required": false
                    }
                ]
            }
        },
        "/entrants/{entrantID}/notifications": {
            "get": {
                "tags": [
                    "entrants"
                ],
                "summary": "Notification inbox",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "entrantID",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "in": "query",
                        "name": "page",
                        "type": "integer",
                        "required": false
                    },
                    {
                        "in": "query",
                        "name": "page_size",
                        "type": "integer",
                        "required": false
                    }
                ]
            }
        },
        "/events": {
            "post": {
                "tags": [
                    "events"
                ],
                "summary": "Create an event",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "query",
                        "name": "validate",
                        "type": "boolean",
                        "required": false
                    },
                    {
                        "in": "body",
                        "name": "event",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/controllers.EventRequest"
                        }
                    }
                ]
            },
            "get": {
                "tags": [
                    "events"
                ],
                "summary": "List or search events",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "query",
                        "name": "name",
                        "type": "string",
                        "required": false
                    },
                    {
                        "in": "query",
                        "name": "location",
                        "type": "string",
                        "required": false
                    },
                    {
                        "in": "query",
                        "name": "from",
                        "type": "string",
                        "required": false
                    },
                    {
                        "in": "query",
                        "name": "to",
                        "type": "string",
                        "required": false
                    },
                    {
                        "in": "query",
                        "name": "organizer_id",
                        "type": "integer",
                        "required": false
                    },
                    {
                        "in": "query",
                        "name": "entrant_id",
                        "type": "integer",
                        "required": false
                    },
                    {
                        "in": "query",
                        "name": "future",
                        "type": "boolean",
                        "required": false
                    },
                    {
                        "in": "query",
                        "name": "page",
                        "type": "integer",
                        "required": false
                    },
                    {
                        "in": "query",
                        "name": "page_size",
                        "type": "integer",
                        "required": false
                    }
                ]
            }
        },
        "/events/{eventID}": {
            "get": {
                "tags": [
                    "events"
                ],
                "summary": "Get an event",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "eventID",
                        "type": "integer",
                        "required": true
                    }
                ]
            },
            "put": {
                "tags": [
                    "events"
                ],
                "summary": "Update event details",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "eventID",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "in": "body",
                        "name": "event",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/controllers.EventRequest"
                        }
                    }
                ]
            },
            "delete": {
                "tags": [
                    "events"
                ],
                "summary": "Delete an event",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "eventID",
                        "type": "integer",
                        "required": true
                    }
                ]
            }
        },
        "/events/{eventID}/entrants": {
            "get": {
                "tags": [
                    "roster"
                ],
                "summary": "List confirmed entrants",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "eventID",
                        "type": "integer",
                        "required": true
                    }
                ]
            },
            "post": {
                "tags": [
                    "roster"
                ],
                "summary": "Confirm entrants",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "eventID",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/controllers.EntrantIDsRequest"
                        }
                    }
                ]
            }
        },
        "/events/{eventID}/entrants/{entrantID}": {
            "delete": {
                "tags": [
                    "roster"
                ],
                "summary": "Remove a confirmed entrant",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "eventID",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "in": "path",
                        "name": "entrantID",
                        "type": "integer",
                        "required": true
                    }
                ]
            }
        },
        "/events/{eventID}/entrants/remove": {
            "post": {
                "tags": [
                    "roster"
                ],
                "summary": "Remove confirmed entrants",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "eventID",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/controllers.EntrantIDsRequest"
                        }
                    }
                ]
            }
        },
        "/events/{eventID}/waitlist": {
            "get": {
                "tags": [
                    "waitlist"
                ],
                "summary": "List waitlisted entrants",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "eventID",
                        "type": "integer",
                        "required": true
                    }
                ]
            },
            "post": {
                "tags": [
                    "waitlist"
                ],
                "summary": "Join the waitlist",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "eventID",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/controllers.JoinWaitlistRequest"
                        }
                    }
                ]
            }
        },
        "/events/{eventID}/waitlist/{entrantID}": {
            "delete": {
                "tags": [
                    "waitlist"
                ],
                "summary": "Leave the waitlist",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "eventID",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "in": "path",
                        "name": "entrantID",
                        "type": "integer",
                        "required": true
                    }
                ]
            }
        },
        "/events/{eventID}/lottery": {
            "post": {
                "tags": [
                    "lottery"
                ],
                "summary": "Run the lottery",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "eventID",
                        "type": "integer",
                        "required": true
                    }
                ]
            }
        },
        "/events/{eventID}/notifications": {
            "post": {
                "tags": [
                    "notifications"
                ],
                "summary": "Broadcast to event members",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "eventID",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/controllers.BroadcastRequest"
                        }
                    }
                ]
            }
        },
        "/events/{eventID}/roster/export": {
            "get": {
                "tags": [
                    "roster"
                ],
                "summary": "Export the roster",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "eventID",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "in": "query",
                        "name": "format",
                        "type": "string",
                        "required": false
                    }
                ]
            }
        },
        "/notifications/respond": {
            "get": {
                "tags": [
                    "notifications"
                ],
                "summary": "Respond through a signed email link",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "query",
                        "name": "token",
                        "type": "string",
                        "required": false
                    }
                ]
            }
        },
        "/notifications/{notificationID}": {
            "get": {
                "tags": [
                    "notifications"
                ],
                "summary": "Get a notification",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "notificationID",
                        "type": "string",
                        "required": true
                    }
                ]
            },
            "delete": {
                "tags": [
                    "notifications"
                ],
                "summary": "Delete a notification",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "notificationID",
                        "type": "string",
                        "required": true
                    }
                ]
            }
        },
        "/notifications/{notificationID}/read": {
            "post": {
                "tags": [
                    "notifications"
                ],
                "summary": "Mark a notification read",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "notificationID",
                        "type": "string",
                        "required": true
                    }
                ]
            }
        },
        "/notifications/{notificationID}/accept": {
            "post": {
                "tags": [
                    "notifications"
                ],
                "summary": "Accept an invitation or stay on the waitlist",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "notificationID",
                        "type": "string",
                        "required": true
                    }
                ]
            }
        },
        "/notifications/{notificationID}/decline": {
            "post": {
                "tags": [
                    "notifications"
                ],
                "summary": "Decline an invitation or leave the waitlist",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "notificationID",
                        "type": "string",
                        "required": true
                    }
                ]
            }
        },
        "/logs": {
            "get": {
                "tags": [
                    "logs"
                ],
                "summary": "List audit entries",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "query",
                        "name": "type",
                        "type": "string",
                        "required": false
                    },
                    {
                        "in": "query",
                        "name": "event_id",
                        "type": "integer",
                        "required": false
                    },
                    {
                        "in": "query",
                        "name": "page",
                        "type": "integer",
                        "required": false
                    },
                    {
                        "in": "query",
                        "name": "page_size",
                        "type": "integer",
                        "required": false
                    }
                ]
            },
            "delete": {
                "tags": [
                    "logs"
                ],
                "summary": "Purge the audit log",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                }
            }
        },
        "/logs/{logID}/read": {
            "post": {
                "tags": [
                    "logs"
                ],
                "summary": "Mark an audit entry read",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "logID",
                        "type": "string",
                        "required": true
                    }
                ]
            }
        },
        "/logs/{logID}": {
            "delete": {
                "tags": [
                    "logs"
                ],
                "summary": "Delete an audit entry",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "logID",
                        "type": "string",
                        "required": true
                    }
                ]
            }
        },
        "/health": {
            "get": {
                "tags": [
                    "health"
                ],
                "summary": "Liveness probe",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/helpers.APIResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "helpers.APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                }
            }
        },
        "helpers.APIResponse": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/helpers.APIError"
                }
            }
        },
        "controllers.CreateEntrantRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "send_notifications": {
                    "type": "boolean"
                },
                "device_id": {
                    "type": "string"
                }
            }
        },
        "controllers.UpdateEntrantRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "send_notifications": {
                    "type": "boolean"
                }
            }
        },
        "controllers.EventRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "location": {
                    "type": "string"
                },
                "guidelines": {
                    "type": "string"
                },
                "image_url": {
                    "type": "string"
                },
                "event_date": {
                    "type": "string",
                    "format": "date-time"
                },
                "registration_start": {
                    "type": "string",
                    "format": "date-time"
                },
                "registration_end": {
                    "type": "string",
                    "format": "date-time"
                },
                "max_entrants": {
                    "type": "integer"
                },
                "max_waiting": {
                    "type": "integer"
                },
                "organizer_id": {
                    "type": "integer"
                },
                "entrant_loc": {
                    "type": "boolean"
                },
                "entrant_dist": {
                    "type": "string"
                }
            }
        },
        "controllers.EntrantIDsRequest": {
            "type": "object",
            "properties": {
                "entrant_ids": {
                    "type": "array",
                    "items": {
                        "type": "integer"
                    }
                }
            }
        },
        "controllers.JoinWaitlistRequest": {
            "type": "object",
            "properties": {
                "entrant_id": {
                    "type": "integer"
                }
            }
        },
        "controllers.BroadcastRequest": {
            "type": "object",
            "properties": {
                "sender_id": {
                    "type": "integer"
                },
                "audience": {
                    "type": "string",
                    "enum": [
                        "confirmed",
                        "waitlist",
                        "all"
                    ]
                },
                "title": {
                    "type": "string"
                },
                "body": {
                    "type": "string"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Event Lottery API",
	Description:      "Event registration with capacity-limited rosters, waitlists and lottery draws.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
