package client

// Wire contract of the remote identity provider. Requests and responses are
// google.protobuf.Struct messages with the fields below; rejections carry
// the provider code in a google.rpc.ErrorInfo detail (Reason).
const (
	serviceName = "identity.v1.IdentityProvider"

	methodRegister          = "/" + serviceName + "/Register"
	methodLogin             = "/" + serviceName + "/Login"
	methodSignOut           = "/" + serviceName + "/SignOut"
	methodSendPasswordReset = "/" + serviceName + "/SendPasswordReset"
	methodSignInWithSocial  = "/" + serviceName + "/SignInWithSocial"
	methodRefresh           = "/" + serviceName + "/Refresh"

	fieldEmail    = "email"
	fieldPassword = "password"
	fieldProvider = "provider"
	fieldIDToken  = "id_token"
)
