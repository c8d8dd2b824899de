package auth

// CheckPermissions проверяет наличие права в claim permissions
//
// Сравнение точное, без шаблонов. Отсутствующий claim и пустой список
// дают разные ошибки, обе отвечают 401.
func CheckPermissions(required string, claims *Claims) error {
	if claims == nil || !claims.HasPermissions {
		return newError(KindPermissionsClaimMissing, "Permissions not included in JWT.", nil)
	}
	if !claims.HasPermission(required) {
		return newError(KindPermissionDenied, "Permission not found.", nil)
	}
	return nil
}
