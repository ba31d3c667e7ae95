package gateway

// Operation is a named GraphQL document.
type Operation struct {
	Name  string
	Query string
}

var (
	opRecipes = Operation{Name: "GetRecipes", Query: `
query GetRecipes($search: String, $limit: Int, $offset: Int) {
  recipes(search: $search, limit: $limit, offset: $offset) {
    id
    title
    description
    cookingTime
    difficulty
    imageUrl
    steps
    createdAt
    updatedAt
    ingredients { name quantity unit }
    author { id username }
  }
}`}

	opRecipe = Operation{Name: "GetRecipe", Query: `
query GetRecipe($id: ID!) {
  recipe(id: $id) {
    id
    title
    description
    cookingTime
    difficulty
    imageUrl
    steps
    createdAt
    updatedAt
    ingredients { name quantity unit }
    author { username }
  }
}`}

	opCreateRecipe = Operation{Name: "CreateRecipe", Query: `
mutation CreateRecipe($input: RecipeInput!) {
  createRecipe(input: $input) {
    id
    title
    description
    cookingTime
    difficulty
    imageUrl
    ingredients { name quantity unit }
    steps
    author { username }
    createdAt
    updatedAt
  }
}`}

	opUpdateRecipe = Operation{Name: "UpdateRecipe", Query: `
mutation UpdateRecipe($id: ID!, $input: RecipeInput!) {
  updateRecipe(id: $id, input: $input) {
    id
    title
    description
    cookingTime
    difficulty
    ingredients { name quantity unit }
    steps
    imageUrl
    author { id username }
    createdAt
    updatedAt
  }
}`}

	opDeleteRecipe = Operation{Name: "DeleteRecipe", Query: `
mutation DeleteRecipe($id: ID!) {
  deleteRecipe(id: $id)
}`}

	opRecipeComments = Operation{Name: "GetComments", Query: `
query GetComments($recipeId: ID!) {
  recipeComments(recipeId: $recipeId) {
    id
    content
    author { id username }
    createdAt
    updatedAt
  }
}`}

	opAddComment = Operation{Name: "AddComment", Query: `
mutation AddComment($recipeId: ID!, $content: String!) {
  addComment(recipeId: $recipeId, content: $content) {
    id
    content
    author { id username }
    createdAt
  }
}`}

	opUpdateComment = Operation{Name: "UpdateComment", Query: `
mutation UpdateComment($id: ID!, $content: String!) {
  updateComment(id: $id, content: $content) {
    id
    content
    author { id username }
    createdAt
    updatedAt
  }
}`}

	opDeleteComment = Operation{Name: "DeleteComment", Query: `
mutation DeleteComment($id: ID!) {
  deleteComment(id: $id)
}`}

	opDeleteMultipleComments = Operation{Name: "DeleteMultipleComments", Query: `
mutation DeleteMultipleComments($commentIds: [ID!]!) {
  deleteMultipleComments(commentIds: $commentIds)
}`}

	opLogin = Operation{Name: "Login", Query: `
mutation Login($input: LoginInput!) {
  login(input: $input) {
    token
    user { id username email role }
  }
}`}

	opLogout = Operation{Name: "Logout", Query: `
mutation Logout {
  logout { success message }
}`}

	opRegister = Operation{Name: "Register", Query: `
mutation Register($input: RegisterInput!) {
  register(input: $input) {
    token
    user { id username email role }
  }
}`}

	opForgotPassword = Operation{Name: "ForgotPassword", Query: `
mutation ForgotPassword($email: String!) {
  forgotPassword(email: $email) { success message }
}`}

	opResetPassword = Operation{Name: "ResetPassword", Query: `
mutation ResetPassword($input: ResetPasswordInput!) {
  resetPassword(input: $input) { success message }
}`}

	opCurrentUser = Operation{Name: "GetCurrentUser", Query: `
query GetCurrentUser {
  currentUser { id username email role createdAt }
}`}

	opCheckAuth = Operation{Name: "CheckAuth", Query: `
query CheckAuth {
  checkAuth {
    isAuthenticated
    user { id username email role }
  }
}`}

	opUserPermissions = Operation{Name: "GetUserPermissions", Query: `
query GetUserPermissions {
  userPermissions {
    canCreateRecipe
    canEditRecipe
    canDeleteRecipe
    canManageUsers
    canManageComments
  }
}`}

	opUsers = Operation{Name: "GetUsers", Query: `
query GetUsers {
  users { id username email role createdAt }
}`}

	opUpdateUser = Operation{Name: "UpdateUser", Query: `
mutation UpdateUser($id: ID!, $input: UpdateUserInput!) {
  updateUser(id: $id, input: $input) { id username email role createdAt }
}`}

	opDeleteUser = Operation{Name: "DeleteUser", Query: `
mutation DeleteUser($id: ID!) {
  deleteUser(id: $id) { success message }
}`}
)
