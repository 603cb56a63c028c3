// Package api exposes the token codec over HTTP.
//
//	POST /tokens         any JSON body          -> {"data":{"token":"..."}}
//	POST /tokens/verify  {"token":"..."}        -> {"data":{"valid":true,"payload":...}}
//	GET  /whoami         Authorization: Bearer  -> {"data":{"payload":{...}}}
//	GET  /health                                -> ALIVE
//	GET  /ready                                 -> READY / NOT_READY
//
// Every JSON reply uses the Response envelope. Invalid tokens sent to
// /tokens/verify come back as valid:false with a reason key; /whoami answers
// 401 instead.
package api
